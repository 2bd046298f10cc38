// Package score ranks option contracts for same-day directional trades.
// Five independently normalized factors are blended by fixed weights;
// the full factor breakdown travels with the total so a recommendation
// can show its work.
package score

import (
	"math"
	"sort"

	"github.com/pintscoredd/zerodte/internal/chain"
)

const (
	weightDelta      = 0.25
	weightGammaTheta = 0.25
	weightLiquidity  = 0.20
	weightFlow       = 0.15
	weightIV         = 0.15

	deltaSweetSpot = 0.30
	deltaSigma     = 0.10
)

// epsilon is the machine epsilon for float64. Theta magnitudes below it
// are treated as zero decay.
var epsilon = math.Nextafter(1, 2) - 1

// Breakdown carries the five normalized factors, the raw ratios behind
// them and the weighted total. All factors and the total live in [0,1].
type Breakdown struct {
	Delta      float64 `json:"delta"`
	GammaTheta float64 `json:"gamma_theta"`
	Liquidity  float64 `json:"liquidity"`
	Flow       float64 `json:"flow"`
	IVValue    float64 `json:"iv_value"`

	GammaThetaRatio float64 `json:"gamma_theta_ratio"`
	SpreadPct       float64 `json:"spread_pct"`
	FlowRatio       float64 `json:"flow_ratio"`

	Total float64 `json:"total"`
}

// Evaluate scores one contract against the chain's typical implied
// volatility (medianIV, see MedianIV).
//
// Factors:
//   - delta: Gaussian centered on |delta| = 0.30, sigma 0.10. Moderate
//     directional exposure scores best, deep ITM/OTM decays fast.
//   - gamma/theta: sigmoid 1 - 1/(1+r) of r = gamma/|theta|. Zero decay
//     means zero ratio, heavy convexity per unit decay saturates to 1.
//   - liquidity: 1 - 5*spreadPct, floored at 0. A missing mid forces
//     spreadPct to 1. Spreads of 20% or wider score 0.
//   - flow: volume relative to standing open interest, capped at 1.
//   - iv value: r = iv/medianIV (1 when the median is unusable);
//     2 - r clamped to [0,1], so at-or-below-median pricing scores high.
func Evaluate(c chain.Contract, medianIV float64) Breakdown {
	var b Breakdown

	d := math.Abs(c.Greeks.Delta)
	b.Delta = clamp01(math.Exp(-(d - deltaSweetSpot) * (d - deltaSweetSpot) / (2 * deltaSigma * deltaSigma)))

	if math.Abs(c.Greeks.Theta) >= epsilon {
		b.GammaThetaRatio = c.Greeks.Gamma / math.Abs(c.Greeks.Theta)
	}
	b.GammaTheta = clamp01(1 - 1/(1+b.GammaThetaRatio))

	b.SpreadPct = 1
	if c.Mid > 0 {
		b.SpreadPct = (c.Ask - c.Bid) / c.Mid
	}
	b.Liquidity = clamp01(1 - 5*b.SpreadPct)

	oi := c.OpenInterest
	if oi < 1 {
		oi = 1
	}
	b.FlowRatio = float64(c.Volume) / float64(oi)
	b.Flow = clamp01(b.FlowRatio)

	ivRatio := 1.0
	if medianIV > 0 {
		ivRatio = c.Greeks.IV / medianIV
	}
	b.IVValue = clamp01(2 - ivRatio)

	b.Total = weightDelta*b.Delta +
		weightGammaTheta*b.GammaTheta +
		weightLiquidity*b.Liquidity +
		weightFlow*b.Flow +
		weightIV*b.IVValue
	return b
}

// MedianIV is the implied volatility at the sorted midpoint of the
// chain's tradable contracts (upper middle for even counts). Zero when
// the chain is empty.
func MedianIV(ch chain.Chain) float64 {
	ivs := make([]float64, 0, len(ch))
	for _, c := range ch {
		if c.Tradable() {
			ivs = append(ivs, c.Greeks.IV)
		}
	}
	if len(ivs) == 0 {
		return 0
	}
	sort.Float64s(ivs)
	return ivs[len(ivs)/2]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
