package analytics

import (
	"math"

	"github.com/pintscoredd/zerodte/internal/chain"
)

// PutCallRatio is total put open interest over total call open
// interest, rounded to 2 decimals. Undefined (false) when the chain
// carries no call open interest.
func PutCallRatio(ch chain.Chain) (float64, bool) {
	var callOI, putOI float64
	for _, c := range ch {
		if !c.Tradable() {
			continue
		}
		switch c.Type {
		case chain.Call:
			callOI += float64(c.OpenInterest)
		case chain.Put:
			putOI += float64(c.OpenInterest)
		}
	}
	if callOI == 0 {
		return 0, false
	}
	return round2(putOI / callOI), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
