package record

import (
	"time"
)

// Record is one trading-day summary for a single security. The Max*/Min*
// fields are the extrema of the individual transactions aggregated into
// Volume and Amount.
type Record struct {
	Code      string
	Name      string
	Date      time.Time
	Volume    int64
	Amount    float64
	MaxVolume int64
	MinVolume int64
	MaxAmount float64
	MinAmount float64
}
