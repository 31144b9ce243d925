package common

import (
	"fmt"
	"math"
)

// FormatLapTime renders seconds as m:ss.mmm, e.g. 85.312 -> "1:25.312".
func FormatLapTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "-"
	}
	ms := int64(math.Round(seconds * 1000))
	minutes := ms / 60000
	ms -= minutes * 60000
	return fmt.Sprintf("%d:%02d.%03d", minutes, ms/1000, ms%1000)
}

// FormatGap renders a signed gap in seconds, e.g. "+0.412" or "-1.050".
func FormatGap(seconds float64) string {
	return fmt.Sprintf("%+.3f", seconds)
}
