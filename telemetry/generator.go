package telemetry

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/apextelemetry/apextelemetry/database/model"
)

// Generate produces laps rows of telemetry ordered by lap and timestamp. Tire wear only
// grows, except on a pit lap where it resets to fresh rubber. laps <= 0 yields an empty
// slice.
func Generate(rng *rand.Rand, laps int, p Params) []model.CarData {
	if laps <= 0 {
		return []model.CarData{}
	}
	rows := make([]model.CarData, 0, laps)

	noise := func(scale float64) float64 {
		return (rng.Float64()*2 - 1) * scale
	}

	speed := p.BaseSpeed
	wear := 0.0
	pos := clampInt(p.StartPosition, 1, gridSize)
	ts := p.Start

	for lap := 1; lap <= laps; lap++ {
		pit := wear >= PitWearThreshold

		if pit {
			wear = rng.Float64() * 3
		} else {
			wear = math.Min(100, wear+p.WearRate*(0.5+rng.Float64()))
		}

		target := p.BaseSpeed - wear*0.5 + noise(10/p.Consistency)
		speed = clamp(0.7*speed+0.3*target+noise(2), 200, 360)

		rpm := clamp(p.BaseRPM+(speed-280)*10+noise(200), 10000, 15000)

		var tireTemp float64
		if pit {
			tireTemp = 70 + rng.Float64()*5
		} else {
			tireTemp = 90 + wear*0.3 + noise(5)
		}

		lapTime := p.BaseLapTime + wear*0.1 + noise(2/p.Consistency)
		if pit {
			lapTime += PitLapPenalty
		}
		sectorTime := lapTime/3 + noise(0.5/p.Consistency)

		if pit {
			pos += rng.IntN(3)
		} else {
			pos += rng.IntN(3) - 1
		}
		pos = clampInt(pos, 1, gridSize)

		ts = ts.Add(time.Duration(lapTime * float64(time.Second)))

		rows = append(rows, model.CarData{
			Lap:        lap,
			Timestamp:  ts,
			Speed:      round(speed, 2),
			Rpm:        int(math.Round(rpm)),
			LapTime:    round(lapTime, 3),
			TireTemp:   round(tireTemp, 1),
			TireWear:   round(wear, 2),
			SectorTime: round(sectorTime, 3),
			Position:   pos,
		})
	}
	return rows
}

func round(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Round(v*f) / f
}
