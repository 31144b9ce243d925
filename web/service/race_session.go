package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/apextelemetry/apextelemetry/config"
	"github.com/apextelemetry/apextelemetry/database"
	"github.com/apextelemetry/apextelemetry/database/model"
	"github.com/apextelemetry/apextelemetry/f1api"
	"github.com/apextelemetry/apextelemetry/logger"
	"github.com/apextelemetry/apextelemetry/telemetry"
	"github.com/apextelemetry/apextelemetry/util/random"

	"gorm.io/gorm"
)

const (
	maxSessionNameLen = 100
	maxDriverNameLen  = 100
)

// DriverClient resolves driver metadata. It never fails; unknown drivers get defaults.
type DriverClient interface {
	LookupDriver(ctx context.Context, name string, season int) f1api.DriverInfo
	Drivers(ctx context.Context, season int) []f1api.DriverInfo
	Seasons(ctx context.Context) []int
	DriverRaces(ctx context.Context, name string) []f1api.Race
}

// SessionInput is the validated-on-create payload of a new race session.
type SessionInput struct {
	Name       string
	DriverName string
	RaceDate   string // YYYY-MM-DD
	Laps       *int   // nil selects telemetry.DefaultLaps
}

// RefreshResult tells the caller what a refresh produced.
type RefreshResult struct {
	Session  *model.RaceSession `json:"session"`
	Laps     int                `json:"laps"`
	PitStops []int              `json:"pitStops"`
}

type RaceSessionService struct {
	drivers  DriverClient
	notifier Notifier
	newRand  func() *rand.Rand
	users    UserService
}

// NewRaceSessionService wires the collaborators. newRand may be nil, in which case each
// generation draws a fresh random seed.
func NewRaceSessionService(drivers DriverClient, notifier Notifier, newRand func() *rand.Rand) *RaceSessionService {
	if newRand == nil {
		newRand = func() *rand.Rand {
			key := random.Key(16)
			var a, b uint64
			for i := 0; i < 8; i++ {
				a = a<<8 | uint64(key[i])
				b = b<<8 | uint64(key[8+i])
			}
			return rand.New(rand.NewPCG(a, b))
		}
	}
	return &RaceSessionService{drivers: drivers, notifier: notifier, newRand: newRand}
}

// hasControl reports whether s contains control characters such as CR or LF.
func hasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

func parseRaceDate(raw string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, invalid("raceDate", "race date must be formatted YYYY-MM-DD")
	}
	return d, nil
}

func (in SessionInput) validate() (time.Time, int, error) {
	name := strings.TrimSpace(in.Name)
	driver := strings.TrimSpace(in.DriverName)
	if name == "" || len([]rune(name)) > maxSessionNameLen {
		return time.Time{}, 0, invalid("name", "session name must be between 1 and 100 characters")
	}
	if hasControl(name) {
		return time.Time{}, 0, invalid("name", "session name must not contain control characters")
	}
	if driver == "" || len([]rune(driver)) > maxDriverNameLen {
		return time.Time{}, 0, invalid("driverName", "driver name must be between 1 and 100 characters")
	}
	if hasControl(driver) {
		return time.Time{}, 0, invalid("driverName", "driver name must not contain control characters")
	}
	date, err := parseRaceDate(in.RaceDate)
	if err != nil {
		return time.Time{}, 0, err
	}
	laps := telemetry.DefaultLaps
	if in.Laps != nil {
		laps = *in.Laps
	}
	if laps < 0 || laps > telemetry.MaxLaps {
		return time.Time{}, 0, invalid("laps", fmt.Sprintf("laps must be between 0 and %d", telemetry.MaxLaps))
	}
	return date, laps, nil
}

func raceStart(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 14, 0, 0, 0, time.UTC)
}

func (s *RaceSessionService) generate(sess *model.RaceSession) []model.CarData {
	p := telemetry.ParamsFor(sess.DriverName, sess.Grid, raceStart(sess.RaceDate))
	rows := telemetry.Generate(s.newRand(), sess.Laps, p)
	for i := range rows {
		rows[i].SessionId = sess.Id
	}
	return rows
}

// Create looks up the driver, generates telemetry, stores the session with its rows and
// sends the session-created notification.
func (s *RaceSessionService) Create(ctx context.Context, userID int, in SessionInput) (*model.RaceSession, error) {
	date, laps, err := in.validate()
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(userID)
	if err != nil {
		return nil, err
	}

	driver := s.drivers.LookupDriver(ctx, strings.TrimSpace(in.DriverName), date.Year())
	sess := &model.RaceSession{
		UserId:            userID,
		Name:              strings.TrimSpace(in.Name),
		DriverName:        strings.TrimSpace(in.DriverName),
		RaceDate:          date,
		Laps:              laps,
		Grid:              driver.StandingPosition,
		DriverFullName:    driver.FullName,
		DriverCode:        driver.Code,
		DriverNationality: driver.Nationality,
		DriverTeam:        driver.Team,
	}

	err = database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sess).Error; err != nil {
			return err
		}
		rows := s.generate(sess)
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 100).Error
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("user %d created session %d (%s, %d laps)", userID, sess.Id, sess.DriverName, laps)

	s.notifier.Notify(ctx, user.Email, EventSessionCreated, NotificationData{
		Username:    user.Username,
		SessionName: sess.Name,
		DriverName:  sess.DriverName,
		RaceDate:    sess.RaceDate.Format(model.DateLayout),
		Laps:        laps,
		Link:        sessionLink(sess.Id),
	})
	return sess, nil
}

// List returns the user's sessions, newest first.
func (s *RaceSessionService) List(userID int) ([]*model.RaceSession, error) {
	var sessions []*model.RaceSession
	err := database.GetDB().Model(model.RaceSession{}).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&sessions).Error
	return sessions, err
}

// Get returns the session only when userID owns it.
func (s *RaceSessionService) Get(userID, id int) (*model.RaceSession, error) {
	sess := &model.RaceSession{}
	err := database.GetDB().Model(model.RaceSession{}).
		Where("id = ? AND user_id = ?", id, userID).
		First(sess).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// CarData returns the session's rows ordered by timestamp, after the ownership check.
func (s *RaceSessionService) CarData(userID, id int) (*model.RaceSession, []model.CarData, error) {
	sess, err := s.Get(userID, id)
	if err != nil {
		return nil, nil, err
	}
	rows := []model.CarData{}
	err = database.GetDB().Model(model.CarData{}).
		Where("session_id = ?", sess.Id).
		Order("timestamp asc, lap asc").
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}
	return sess, rows, nil
}

func (s *RaceSessionService) Rename(userID, id int, name string) (*model.RaceSession, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > maxSessionNameLen {
		return nil, invalid("name", "session name must be between 1 and 100 characters")
	}
	if hasControl(name) {
		return nil, invalid("name", "session name must not contain control characters")
	}
	sess, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if err := database.GetDB().Model(sess).Update("name", name).Error; err != nil {
		return nil, err
	}
	sess.Name = name
	return sess, nil
}

// Delete removes the session and its car data in one transaction.
func (s *RaceSessionService) Delete(userID, id int) error {
	sess, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	return database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sess.Id).Delete(&model.CarData{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", sess.Id, userID).Delete(&model.RaceSession{}).Error
	})
}

// Refresh regenerates the session's telemetry with the same lap count, replacing the old
// rows. It sends one pit-stop notification when the new data contains pit stops and one
// refreshed notification otherwise.
func (s *RaceSessionService) Refresh(ctx context.Context, userID, id int) (*RefreshResult, error) {
	sess, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(userID)
	if err != nil {
		return nil, err
	}

	rows := s.generate(sess)
	if err := ReplaceCarData(sess.Id, rows); err != nil {
		return nil, err
	}
	pits := telemetry.DetectPitStops(rows)
	logger.Infof("user %d refreshed session %d, pit stops on laps %v", userID, sess.Id, pits)

	data := NotificationData{
		Username:    user.Username,
		SessionName: sess.Name,
		DriverName:  sess.DriverName,
		RaceDate:    sess.RaceDate.Format(model.DateLayout),
		Laps:        len(rows),
		PitLaps:     pits,
		Link:        sessionLink(sess.Id),
	}
	if len(pits) > 0 {
		s.notifier.Notify(ctx, user.Email, EventPitStop, data)
	} else {
		s.notifier.Notify(ctx, user.Email, EventSessionRefreshed, data)
	}

	return &RefreshResult{Session: sess, Laps: len(rows), PitStops: pits}, nil
}

// ReplaceCarData swaps a session's rows for rows in one transaction.
func ReplaceCarData(sessionID int, rows []model.CarData) error {
	return database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.CarData{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].Id = 0
			rows[i].SessionId = sessionID
		}
		return tx.CreateInBatches(rows, 100).Error
	})
}

// Drivers lists a season's drivers for forms and the API. season <= 0 is the current one.
func (s *RaceSessionService) Drivers(ctx context.Context, season int) []f1api.DriverInfo {
	return s.drivers.Drivers(ctx, season)
}

func (s *RaceSessionService) Seasons(ctx context.Context) []int {
	return s.drivers.Seasons(ctx)
}

// DriverRaces lists the races a driver can be simulated at, newest first.
func (s *RaceSessionService) DriverRaces(ctx context.Context, name string) []f1api.Race {
	return s.drivers.DriverRaces(ctx, strings.TrimSpace(name))
}

func sessionLink(id int) string {
	return fmt.Sprintf("%s/panel/sessions/%d", config.GetPublicURL(), id)
}
