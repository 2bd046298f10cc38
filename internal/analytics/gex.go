// Package analytics computes the dealer-positioning metrics of a chain
// snapshot: the per-strike gamma exposure profile, the gamma-flip level,
// the max-pain strike and the put/call ratio. Every function here is a
// pure function of the chain it is handed; callers decide what slice of
// the chain to pass in.
package analytics

import (
	"math"
	"sort"

	"github.com/pintscoredd/zerodte/internal/chain"
)

// GexLevel is the aggregated gamma exposure at one strike, in millions
// of dollars per 1% move. Call contributions are positive, put
// contributions negative.
type GexLevel struct {
	Strike  float64 `json:"strike"`
	CallGex float64 `json:"call_gex"`
	PutGex  float64 `json:"put_gex"`
	NetGex  float64 `json:"net_gex"`
}

// GexProfile is the per-strike exposure ladder, ascending by strike.
type GexProfile []GexLevel

// Gex builds the exposure profile for a chain at the given spot. Each
// tradable contract contributes openInterest * |gamma| * spot^2 * 100,
// signed by side, and the total is expressed in millions. A non-positive
// spot yields an empty profile.
func Gex(ch chain.Chain, spot float64) GexProfile {
	if spot <= 0 {
		return GexProfile{}
	}

	byStrike := make(map[float64]*GexLevel)
	strikes := make([]float64, 0, len(ch))
	for _, c := range ch {
		if !c.Tradable() {
			continue
		}
		exposure := float64(c.OpenInterest) * math.Abs(c.Greeks.Gamma) * spot * spot * 100 / 1e6

		lvl, ok := byStrike[c.Strike]
		if !ok {
			lvl = &GexLevel{Strike: c.Strike}
			byStrike[c.Strike] = lvl
			strikes = append(strikes, c.Strike)
		}
		switch c.Type {
		case chain.Call:
			lvl.CallGex += exposure
		case chain.Put:
			lvl.PutGex -= exposure
		}
		lvl.NetGex = lvl.CallGex + lvl.PutGex
	}

	sort.Float64s(strikes)
	out := make(GexProfile, 0, len(strikes))
	for _, k := range strikes {
		out = append(out, *byStrike[k])
	}
	return out
}

// Flip returns the gamma-flip strike: scanning ascending, the first
// strike whose net exposure turns positive after a non-positive level.
// With no sign change the profile is one-sided, so the flip collapses
// to the lowest strike when everything is >= 0 and to the highest
// otherwise. An empty profile has no flip.
func (p GexProfile) Flip() (float64, bool) {
	if len(p) == 0 {
		return 0, false
	}
	for i := 1; i < len(p); i++ {
		if p[i-1].NetGex <= 0 && p[i].NetGex > 0 {
			return p[i].Strike, true
		}
	}
	for _, lvl := range p {
		if lvl.NetGex < 0 {
			return p[len(p)-1].Strike, true
		}
	}
	return p[0].Strike, true
}

// Wall returns the level with the largest-magnitude net exposure
// strictly on one side of the given strike: above it when above is
// true, below it otherwise. Used to place profit targets against the
// heaviest dealer hedging concentration.
func (p GexProfile) Wall(strike float64, above bool) (GexLevel, bool) {
	var best GexLevel
	found := false
	for _, lvl := range p {
		if above && lvl.Strike <= strike {
			continue
		}
		if !above && lvl.Strike >= strike {
			continue
		}
		if !found || math.Abs(lvl.NetGex) > math.Abs(best.NetGex) {
			best = lvl
			found = true
		}
	}
	return best, found
}
