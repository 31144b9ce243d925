package telemetry

import (
	"math"

	"github.com/apextelemetry/apextelemetry/database/model"
)

// DetectPitStops returns the laps on which tire wear dropped below the previous lap's.
// rows must be in lap order.
func DetectPitStops(rows []model.CarData) []int {
	laps := []int{}
	for i := 1; i < len(rows); i++ {
		if rows[i].TireWear < rows[i-1].TireWear {
			laps = append(laps, rows[i].Lap)
		}
	}
	return laps
}

// Summary holds headline numbers for a session.
type Summary struct {
	Laps          int     `json:"laps"`
	BestLap       int     `json:"bestLap"`
	BestLapTime   float64 `json:"bestLapTime"`
	AvgLapTime    float64 `json:"avgLapTime"`
	MaxSpeed      float64 `json:"maxSpeed"`
	AvgSpeed      float64 `json:"avgSpeed"`
	FinalPosition int     `json:"finalPosition"`
	PitStops      []int   `json:"pitStops"`
}

func Summarize(rows []model.CarData) Summary {
	s := Summary{Laps: len(rows), PitStops: DetectPitStops(rows)}
	if len(rows) == 0 {
		return s
	}
	s.BestLapTime = math.Inf(1)
	var lapSum, speedSum float64
	for _, r := range rows {
		lapSum += r.LapTime
		speedSum += r.Speed
		if r.LapTime < s.BestLapTime {
			s.BestLapTime = r.LapTime
			s.BestLap = r.Lap
		}
		if r.Speed > s.MaxSpeed {
			s.MaxSpeed = r.Speed
		}
	}
	n := float64(len(rows))
	s.AvgLapTime = round(lapSum/n, 3)
	s.AvgSpeed = round(speedSum/n, 2)
	s.FinalPosition = rows[len(rows)-1].Position
	return s
}
