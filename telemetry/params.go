// Package telemetry generates synthetic per-lap car data. Generation is a pure function of
// its parameters and the supplied random source, so callers control reproducibility.
package telemetry

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	DefaultLaps = 50
	MaxLaps     = 200

	// PitWearThreshold is the tire wear (percent) at which the car boxes on the next lap.
	PitWearThreshold = 80.0
	// PitLapPenalty is the time lost in the pit lane, in seconds.
	PitLapPenalty = 22.0

	gridSize = 20
)

// Params are the per-driver modifiers that shape a generated race.
type Params struct {
	BaseSpeed     float64 // km/h on fresh tires
	BaseRPM       float64
	BaseLapTime   float64 // seconds on fresh tires
	Consistency   float64 // 1 (erratic) .. 5 (metronomic)
	WearRate      float64 // mean tire wear per lap, percent
	StartPosition int
	Start         time.Time
}

// ParamsFor derives stable parameters from the driver's name. grid is the starting
// position when known; values outside 1..20 are replaced by a derived one.
func ParamsFor(driverName string, grid int, start time.Time) Params {
	h := driverHash(driverName) % 1000
	perf := float64(h%20) - 10
	consistency := float64(h%5) + 1

	if grid < 1 || grid > gridSize {
		grid = clampInt(5+int(perf)/2, 1, gridSize)
	}

	return Params{
		BaseSpeed:     280 + perf*1.5,
		BaseRPM:       12000 + perf*25,
		BaseLapTime:   85 - perf*0.15,
		Consistency:   consistency,
		WearRate:      1.8 + consistency*0.1,
		StartPosition: grid,
		Start:         start,
	}
}

// NewRand returns a PCG-backed source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SeedFor hashes the given parts into a seed. Equal inputs give equal seeds across runs.
func SeedFor(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

func driverHash(name string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return h.Sum32()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
