package telemetry

import (
	"time"

	"github.com/apextelemetry/apextelemetry/database/model"
)

// Series is the column-oriented shape the charts consume.
type Series struct {
	Timestamps []string  `json:"timestamps"`
	Laps       []int     `json:"laps"`
	Speed      []float64 `json:"speed"`
	Rpm        []int     `json:"rpm"`
	LapTime    []float64 `json:"lap_time"`
	TireTemp   []float64 `json:"tire_temp"`
	TireWear   []float64 `json:"tire_wear"`
	SectorTime []float64 `json:"sector_time"`
	Position   []int     `json:"position"`
	PitStops   []int     `json:"pit_stops"`
}

// ToSeries pivots rows into columns. Every slice is non-nil so it encodes as [].
func ToSeries(rows []model.CarData) Series {
	n := len(rows)
	s := Series{
		Timestamps: make([]string, 0, n),
		Laps:       make([]int, 0, n),
		Speed:      make([]float64, 0, n),
		Rpm:        make([]int, 0, n),
		LapTime:    make([]float64, 0, n),
		TireTemp:   make([]float64, 0, n),
		TireWear:   make([]float64, 0, n),
		SectorTime: make([]float64, 0, n),
		Position:   make([]int, 0, n),
		PitStops:   DetectPitStops(rows),
	}
	for _, r := range rows {
		s.Timestamps = append(s.Timestamps, r.Timestamp.UTC().Format(time.RFC3339))
		s.Laps = append(s.Laps, r.Lap)
		s.Speed = append(s.Speed, r.Speed)
		s.Rpm = append(s.Rpm, r.Rpm)
		s.LapTime = append(s.LapTime, r.LapTime)
		s.TireTemp = append(s.TireTemp, r.TireTemp)
		s.TireWear = append(s.TireWear, r.TireWear)
		s.SectorTime = append(s.SectorTime, r.SectorTime)
		s.Position = append(s.Position, r.Position)
	}
	return s
}
