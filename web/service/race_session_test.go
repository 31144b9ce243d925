package service

import (
	"testing"

	"github.com/apextelemetry/apextelemetry/database"
	"github.com/apextelemetry/apextelemetry/database/model"
	"github.com/apextelemetry/apextelemetry/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionMonaco(t *testing.T) {
	setup(t)
	drivers := &fakeDrivers{}
	notifier := &recordingNotifier{}
	svc := NewRaceSessionService(drivers, notifier, seeded(42))
	alice := mustRegister(t, "alice")

	sess, err := svc.Create(t.Context(), alice.Id, SessionInput{
		Name:       "Monaco GP 2024",
		DriverName: "Lewis Hamilton",
		RaceDate:   "2024-05-26",
		Laps:       intPtr(50),
	})
	require.NoError(t, err)
	assert.Equal(t, "Monaco GP 2024", sess.Name)
	assert.Equal(t, "British", sess.DriverNationality)
	assert.Equal(t, []string{"Lewis Hamilton"}, drivers.calls)

	var sessions, rows int64
	database.GetDB().Model(&model.RaceSession{}).Where("user_id = ?", alice.Id).Count(&sessions)
	database.GetDB().Model(&model.CarData{}).Where("session_id = ?", sess.Id).Count(&rows)
	assert.EqualValues(t, 1, sessions)
	assert.EqualValues(t, 50, rows)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, EventSessionCreated, notifier.sent[0].Event)
	assert.Equal(t, "alice@example.com", notifier.sent[0].To)
	assert.Equal(t, 50, notifier.sent[0].Data.Laps)

	_, data, err := svc.CarData(alice.Id, sess.Id)
	require.NoError(t, err)
	require.Len(t, data, 50)
	pits := map[int]bool{}
	for _, l := range telemetry.DetectPitStops(data) {
		pits[l] = true
	}
	for i := 1; i < len(data); i++ {
		assert.False(t, data[i].Timestamp.Before(data[i-1].Timestamp))
		if !pits[data[i].Lap] {
			assert.GreaterOrEqual(t, data[i].TireWear, data[i-1].TireWear)
		}
	}
}

func TestCreateSessionDefaultsAndEdgeCases(t *testing.T) {
	setup(t)
	notifier := &recordingNotifier{}
	svc := NewRaceSessionService(&fakeDrivers{}, notifier, nil)
	alice := mustRegister(t, "alice")

	sess, err := svc.Create(t.Context(), alice.Id, SessionInput{Name: "Default", DriverName: "Max Verstappen", RaceDate: "2024-03-02"})
	require.NoError(t, err)
	assert.Equal(t, telemetry.DefaultLaps, sess.Laps)

	empty, err := svc.Create(t.Context(), alice.Id, SessionInput{Name: "Empty", DriverName: "Max Verstappen", RaceDate: "2024-03-02", Laps: intPtr(0)})
	require.NoError(t, err)
	_, rows, err := svc.CarData(alice.Id, empty.Id)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)

	bad := []SessionInput{
		{Name: "", DriverName: "Max Verstappen", RaceDate: "2024-03-02"},
		{Name: "x", DriverName: " ", RaceDate: "2024-03-02"},
		{Name: "x", DriverName: "Max Verstappen", RaceDate: "03/02/2024"},
		{Name: "x", DriverName: "Max Verstappen", RaceDate: "2024-03-02", Laps: intPtr(-1)},
		{Name: "x", DriverName: "Max Verstappen", RaceDate: "2024-03-02", Laps: intPtr(telemetry.MaxLaps + 1)},
		{Name: "Monaco\r\nBcc: evil@example.com", DriverName: "Max Verstappen", RaceDate: "2024-03-02"},
		{Name: "x", DriverName: "Max\nVerstappen", RaceDate: "2024-03-02"},
		{Name: "tab\there", DriverName: "Max Verstappen", RaceDate: "2024-03-02"},
	}
	for _, in := range bad {
		_, err := svc.Create(t.Context(), alice.Id, in)
		assert.True(t, IsValidation(err), "%+v", in)
	}
	assert.Len(t, notifier.sent, 2)
}

func TestSessionOwnershipIsolation(t *testing.T) {
	setup(t)
	svc := NewRaceSessionService(&fakeDrivers{}, &recordingNotifier{}, seeded(3))
	alice := mustRegister(t, "alice")
	mallory := mustRegister(t, "mallory")

	sess, err := svc.Create(t.Context(), alice.Id, SessionInput{Name: "Silverstone", DriverName: "Lando Norris", RaceDate: "2024-07-07", Laps: intPtr(5)})
	require.NoError(t, err)

	_, err = svc.Get(mallory.Id, sess.Id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.CarData(mallory.Id, sess.Id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Refresh(t.Context(), mallory.Id, sess.Id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Rename(mallory.Id, sess.Id, "Mine now")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(mallory.Id, sess.Id), ErrNotFound)

	// Absent and foreign look identical.
	_, err = svc.Get(mallory.Id, 99999)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.List(mallory.Id)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := svc.Get(alice.Id, sess.Id)
	require.NoError(t, err)
	assert.Equal(t, "Silverstone", got.Name)
}

func TestRefreshReplacesRowsAndNotifiesOnce(t *testing.T) {
	setup(t)
	notifier := &recordingNotifier{}
	svc := NewRaceSessionService(&fakeDrivers{}, notifier, seeded(100))
	alice := mustRegister(t, "alice")

	sess, err := svc.Create(t.Context(), alice.Id, SessionInput{Name: "Spa", DriverName: "Oscar Piastri", RaceDate: "2024-07-28", Laps: intPtr(50)})
	require.NoError(t, err)
	_, before, err := svc.CarData(alice.Id, sess.Id)
	require.NoError(t, err)

	res, err := svc.Refresh(t.Context(), alice.Id, sess.Id)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Laps)

	_, after, err := svc.CarData(alice.Id, sess.Id)
	require.NoError(t, err)
	require.Len(t, after, 50)
	assert.NotEqual(t, telemetry.ToSeries(before), telemetry.ToSeries(after))
	assert.Equal(t, telemetry.DetectPitStops(after), res.PitStops)

	require.Len(t, notifier.sent, 2)
	refreshEvent := notifier.sent[1]
	if len(res.PitStops) > 0 {
		assert.Equal(t, EventPitStop, refreshEvent.Event)
		assert.Equal(t, res.PitStops, refreshEvent.Data.PitLaps)
	} else {
		assert.Equal(t, EventSessionRefreshed, refreshEvent.Event)
	}
}

func TestRefreshWithoutPitStops(t *testing.T) {
	setup(t)
	notifier := &recordingNotifier{}
	svc := NewRaceSessionService(&fakeDrivers{}, notifier, seeded(5))
	alice := mustRegister(t, "alice")

	// Ten laps never wear the tires past the pit threshold.
	sess, err := svc.Create(t.Context(), alice.Id, SessionInput{Name: "Short", DriverName: "George Russell", RaceDate: "2024-06-09", Laps: intPtr(10)})
	require.NoError(t, err)

	res, err := svc.Refresh(t.Context(), alice.Id, sess.Id)
	require.NoError(t, err)
	assert.Empty(t, res.PitStops)
	assert.Equal(t, []Event{EventSessionCreated, EventSessionRefreshed}, notifier.events())
}

func TestRefreshFullRaceReportsPitStop(t *testing.T) {
	setup(t)
	notifier := &recordingNotifier{}
	svc := NewRaceSessionService(&fakeDrivers{}, notifier, seeded(9))
	alice := mustRegister(t, "alice")

	// A full distance always crosses the wear threshold at least once.
	sess, err := svc.Create(t.Context(), alice.Id, SessionInput{Name: "Long", DriverName: "George Russell", RaceDate: "2024-06-09", Laps: intPtr(telemetry.MaxLaps)})
	require.NoError(t, err)

	res, err := svc.Refresh(t.Context(), alice.Id, sess.Id)
	require.NoError(t, err)
	assert.NotEmpty(t, res.PitStops)
	assert.Equal(t, []Event{EventSessionCreated, EventPitStop}, notifier.events())
}

func TestRenameListDelete(t *testing.T) {
	setup(t)
	svc := NewRaceSessionService(&fakeDrivers{}, &recordingNotifier{}, seeded(11))
	alice := mustRegister(t, "alice")

	a, err := svc.Create(t.Context(), alice.Id, SessionInput{Name: "A", DriverName: "Yuki Tsunoda", RaceDate: "2024-04-07", Laps: intPtr(3)})
	require.NoError(t, err)
	b, err := svc.Create(t.Context(), alice.Id, SessionInput{Name: "B", DriverName: "Yuki Tsunoda", RaceDate: "2024-04-07", Laps: intPtr(3)})
	require.NoError(t, err)

	renamed, err := svc.Rename(alice.Id, a.Id, "  Suzuka  ")
	require.NoError(t, err)
	assert.Equal(t, "Suzuka", renamed.Name)
	_, err = svc.Rename(alice.Id, a.Id, "")
	assert.True(t, IsValidation(err))
	_, err = svc.Rename(alice.Id, a.Id, "Suzuka\r\nBcc: evil@example.com")
	assert.True(t, IsValidation(err))

	list, err := svc.List(alice.Id)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.Id, list[0].Id)

	require.NoError(t, svc.Delete(alice.Id, a.Id))
	var rows int64
	database.GetDB().Model(&model.CarData{}).Where("session_id = ?", a.Id).Count(&rows)
	assert.Zero(t, rows)
	_, err = svc.Get(alice.Id, a.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}
