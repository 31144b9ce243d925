package service

import (
	"context"
	"strings"

	"github.com/apextelemetry/apextelemetry/database"
	"github.com/apextelemetry/apextelemetry/database/model"
	"github.com/apextelemetry/apextelemetry/f1api"
	"github.com/apextelemetry/apextelemetry/logger"
	"github.com/apextelemetry/apextelemetry/telemetry"

	"github.com/goccy/go-json"
)

type ComparisonInput struct {
	Driver1  string
	Driver2  string
	RaceDate string
}

// DriverRun is one side of a comparison.
type DriverRun struct {
	Driver  f1api.DriverInfo  `json:"driver"`
	Summary telemetry.Summary `json:"summary"`
	Series  telemetry.Series  `json:"series"`
}

type ComparisonResult struct {
	Id       int       `json:"id,omitempty"`
	RaceDate string    `json:"raceDate"`
	Driver1  DriverRun `json:"driver1"`
	Driver2  DriverRun `json:"driver2"`
}

// ComparisonService builds and stores two-driver comparisons. Runs are seeded from the
// driver and race date, so the same pair on the same date always compares the same way.
type ComparisonService struct {
	drivers DriverClient
}

func NewComparisonService(drivers DriverClient) *ComparisonService {
	return &ComparisonService{drivers: drivers}
}

func (s *ComparisonService) Build(ctx context.Context, in ComparisonInput) (*ComparisonResult, error) {
	d1 := strings.TrimSpace(in.Driver1)
	d2 := strings.TrimSpace(in.Driver2)
	if d1 == "" {
		return nil, invalid("driver1", "select the first driver")
	}
	if d2 == "" {
		return nil, invalid("driver2", "select the second driver")
	}
	if hasControl(d1) {
		return nil, invalid("driver1", "driver name must not contain control characters")
	}
	if hasControl(d2) {
		return nil, invalid("driver2", "driver name must not contain control characters")
	}
	if strings.EqualFold(d1, d2) {
		return nil, invalid("driver2", "select two different drivers")
	}
	date, err := parseRaceDate(in.RaceDate)
	if err != nil {
		return nil, err
	}
	dateStr := date.Format(model.DateLayout)

	run := func(name string) DriverRun {
		info := s.drivers.LookupDriver(ctx, name, date.Year())
		p := telemetry.ParamsFor(name, info.StandingPosition, raceStart(date))
		rows := telemetry.Generate(telemetry.NewRand(telemetry.SeedFor(name, dateStr)), telemetry.DefaultLaps, p)
		return DriverRun{Driver: info, Summary: telemetry.Summarize(rows), Series: telemetry.ToSeries(rows)}
	}

	return &ComparisonResult{
		RaceDate: dateStr,
		Driver1:  run(d1),
		Driver2:  run(d2),
	}, nil
}

// Save builds the comparison and stores both runs for userID.
func (s *ComparisonService) Save(ctx context.Context, userID int, in ComparisonInput) (*model.Comparison, error) {
	res, err := s.Build(ctx, in)
	if err != nil {
		return nil, err
	}
	data1, err := json.Marshal(res.Driver1)
	if err != nil {
		return nil, err
	}
	data2, err := json.Marshal(res.Driver2)
	if err != nil {
		return nil, err
	}
	date, _ := parseRaceDate(res.RaceDate)
	cmp := &model.Comparison{
		UserId:      userID,
		Driver1Name: strings.TrimSpace(in.Driver1),
		Driver2Name: strings.TrimSpace(in.Driver2),
		RaceDate:    date,
		Data1:       string(data1),
		Data2:       string(data2),
	}
	if err := database.GetDB().Create(cmp).Error; err != nil {
		return nil, err
	}
	logger.Infof("user %d saved comparison %d (%s vs %s)", userID, cmp.Id, cmp.Driver1Name, cmp.Driver2Name)
	return cmp, nil
}

func (s *ComparisonService) List(userID int) ([]*model.Comparison, error) {
	var list []*model.Comparison
	err := database.GetDB().Model(model.Comparison{}).
		Select("id", "user_id", "driver1_name", "driver2_name", "race_date", "created_at").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&list).Error
	return list, err
}

func (s *ComparisonService) get(userID, id int) (*model.Comparison, error) {
	cmp := &model.Comparison{}
	err := database.GetDB().Model(model.Comparison{}).
		Where("id = ? AND user_id = ?", id, userID).
		First(cmp).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return cmp, nil
}

// Get decodes a stored comparison owned by userID.
func (s *ComparisonService) Get(userID, id int) (*ComparisonResult, error) {
	cmp, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}
	res := &ComparisonResult{Id: cmp.Id, RaceDate: cmp.RaceDate.Format(model.DateLayout)}
	if err := json.Unmarshal([]byte(cmp.Data1), &res.Driver1); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(cmp.Data2), &res.Driver2); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ComparisonService) Delete(userID, id int) error {
	res := database.GetDB().Where("id = ? AND user_id = ?", id, userID).Delete(&model.Comparison{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
