package telemetry

import (
	"testing"
	"time"

	"github.com/apextelemetry/apextelemetry/database/model"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSeries(t *testing.T) {
	ts := time.Date(2024, 5, 26, 14, 1, 25, 0, time.UTC)
	rows := []model.CarData{
		{Lap: 1, Timestamp: ts, Speed: 301.5, Rpm: 12100, LapTime: 85.1, TireTemp: 92, TireWear: 2, SectorTime: 28.3, Position: 3},
		{Lap: 2, Timestamp: ts.Add(85 * time.Second), Speed: 299, Rpm: 12050, LapTime: 85.4, TireTemp: 93, TireWear: 1, SectorTime: 28.5, Position: 4},
	}
	s := ToSeries(rows)
	assert.Equal(t, []string{"2024-05-26T14:01:25Z", "2024-05-26T14:02:50Z"}, s.Timestamps)
	assert.Equal(t, []int{1, 2}, s.Laps)
	assert.Equal(t, []int{12100, 12050}, s.Rpm)
	assert.Equal(t, []int{2}, s.PitStops)
}

func TestToSeriesEmptyEncodesArrays(t *testing.T) {
	b, err := json.Marshal(ToSeries(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamps":[],"laps":[],"speed":[],"rpm":[],"lap_time":[],"tire_temp":[],"tire_wear":[],"sector_time":[],"position":[],"pit_stops":[]}`, string(b))
}
