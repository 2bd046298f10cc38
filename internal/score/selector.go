package score

import (
	"math"

	"github.com/pintscoredd/zerodte/internal/chain"
)

// Bias is the direction a candidate search works in.
type Bias string

const (
	Bullish Bias = "bullish"
	Bearish Bias = "bearish"
)

// Candidate delta windows, exclusive on both ends. Bullish looks for
// calls with moderate positive delta, bearish for the mirrored puts.
const (
	deltaFloor = 0.10
	deltaCeil  = 0.50
)

// SelectTarget scans the chain for the best contract matching the bias:
// bullish wants calls with 0.10 < delta < 0.50, bearish wants puts with
// -0.50 < delta < -0.10, and both demand a positive mid and non-zero
// gamma. Survivors are scored against the chain's median IV; the
// highest total wins, first encountered on ties. ok is false when
// nothing qualifies.
func SelectTarget(ch chain.Chain, bias Bias) (chain.Contract, Breakdown, bool) {
	medianIV := MedianIV(ch)

	var (
		best      chain.Contract
		bestScore Breakdown
		found     bool
	)
	for _, c := range ch {
		if !eligible(c, bias) {
			continue
		}
		b := Evaluate(c, medianIV)
		if !found || b.Total > bestScore.Total {
			best, bestScore, found = c, b, true
		}
	}
	return best, bestScore, found
}

func eligible(c chain.Contract, bias Bias) bool {
	if !c.Tradable() || c.Mid <= 0 || math.Abs(c.Greeks.Gamma) == 0 {
		return false
	}
	switch bias {
	case Bullish:
		return c.Type == chain.Call && c.Greeks.Delta > deltaFloor && c.Greeks.Delta < deltaCeil
	case Bearish:
		return c.Type == chain.Put && c.Greeks.Delta > -deltaCeil && c.Greeks.Delta < -deltaFloor
	}
	return false
}
