package analytics

import (
	"sort"

	"github.com/pintscoredd/zerodte/internal/chain"
)

type strikeOI struct {
	call float64
	put  float64
}

// MaxPain returns the settlement strike minimizing aggregate option
// holder payout. Pain at settlement K is the sum over calls of
// oi * max(0, K - strike) plus the sum over puts of oi * max(0, strike - K).
//
// Instead of evaluating the double sum per strike, pain is computed at
// the lowest strike and then rolled forward: stepping the settlement up
// by gap adds gap * (call OI at or below the previous strike) and
// removes gap * (put OI above the previous strike). Ties keep the
// lowest strike. Returns false when the chain has no tradable strikes.
func MaxPain(ch chain.Chain) (float64, bool) {
	byStrike := make(map[float64]*strikeOI)
	strikes := make([]float64, 0, len(ch))
	for _, c := range ch {
		if !c.Tradable() {
			continue
		}
		oi, ok := byStrike[c.Strike]
		if !ok {
			oi = &strikeOI{}
			byStrike[c.Strike] = oi
			strikes = append(strikes, c.Strike)
		}
		switch c.Type {
		case chain.Call:
			oi.call += float64(c.OpenInterest)
		case chain.Put:
			oi.put += float64(c.OpenInterest)
		}
	}
	if len(strikes) == 0 {
		return 0, false
	}
	sort.Float64s(strikes)

	low := strikes[0]
	var totalPut, pain float64
	for _, k := range strikes {
		totalPut += byStrike[k].put
		if k > low {
			pain += byStrike[k].put * (k - low)
		}
	}

	best, bestPain := low, pain
	cumCall := byStrike[low].call
	cumPut := byStrike[low].put
	for i := 1; i < len(strikes); i++ {
		gap := strikes[i] - strikes[i-1]
		pain += gap * cumCall
		pain -= gap * (totalPut - cumPut)
		if pain < bestPain {
			best, bestPain = strikes[i], pain
		}
		cumCall += byStrike[strikes[i]].call
		cumPut += byStrike[strikes[i]].put
	}
	return best, true
}
