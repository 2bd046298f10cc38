// Package engine turns one option-chain snapshot into dealer-positioning
// analytics and a directional trade recommendation. Analyze is a pure
// function of the snapshot it is handed: no caching, no retries, no I/O.
// Callers that want fresher output fetch a fresher snapshot.
package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/analytics"
	"github.com/pintscoredd/zerodte/internal/chain"
)

const (
	// DefaultBand keeps candidate contracts within 2% of spot.
	DefaultBand = 0.02
	// DefaultScale translates the traded underlying's strikes to the
	// index it tracks (e.g. a 545 strike quoted as 5450).
	DefaultScale = 10.0
)

// Config tunes the engine. Zero values fall back to the defaults.
type Config struct {
	// Band is the half-width of the strike band around spot used when
	// picking trade candidates. Analytics always see the full chain.
	Band float64 `mapstructure:"band"`
	// Scale is the linear multiplier applied to strikes and levels when
	// quoting them on the tracked index's scale.
	Scale float64 `mapstructure:"scale"`
}

// Engine computes analytics and recommendations for chain snapshots.
type Engine struct {
	log   *zap.Logger
	band  float64
	scale float64
}

// New builds an Engine. A nil logger is replaced with a no-op logger.
func New(cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	band := cfg.Band
	if band <= 0 {
		band = DefaultBand
	}
	scale := cfg.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Engine{log: log, band: band, scale: scale}
}

// Analysis is everything the engine derives from one snapshot. Flip,
// MaxPain and PCR are nil when the chain cannot define them.
type Analysis struct {
	Ticker string    `json:"ticker"`
	Taken  time.Time `json:"taken"`
	Spot   float64   `json:"spot"`
	VWAP   float64   `json:"vwap"`

	Profile analytics.GexProfile `json:"profile"`
	Flip    *float64             `json:"flip,omitempty"`
	MaxPain *float64             `json:"max_pain,omitempty"`
	PCR     *float64             `json:"pcr,omitempty"`

	Recommendation Recommendation `json:"recommendation"`
}

// Analyze runs the full pipeline over one snapshot. The profile, the
// flip, max pain and the put/call ratio are computed over every parsed
// contract; only trade-candidate selection narrows the chain to the
// band around spot. Returns nil when the snapshot is unusable (spot not
// positive or no tradable contracts).
func (e *Engine) Analyze(snap chain.Snapshot) *Analysis {
	if snap.Spot <= 0 {
		e.log.Debug("snapshot rejected", zap.String("ticker", snap.Ticker), zap.Float64("spot", snap.Spot))
		return nil
	}
	tradable := 0
	for _, c := range snap.Contracts {
		if c.Tradable() {
			tradable++
		}
	}
	if tradable == 0 {
		e.log.Debug("snapshot has no tradable contracts", zap.String("ticker", snap.Ticker))
		return nil
	}

	profile := analytics.Gex(snap.Contracts, snap.Spot)
	a := &Analysis{
		Ticker:  snap.Ticker,
		Taken:   snap.Taken,
		Spot:    snap.Spot,
		VWAP:    snap.VWAP,
		Profile: profile,
	}
	if flip, ok := profile.Flip(); ok {
		a.Flip = &flip
	}
	if mp, ok := analytics.MaxPain(snap.Contracts); ok {
		a.MaxPain = &mp
	}
	if pcr, ok := analytics.PutCallRatio(snap.Contracts); ok {
		a.PCR = &pcr
	}

	near := snap.Contracts.Filter(snap.Spot, e.band)
	a.Recommendation = e.recommend(snap, a, near)

	e.log.Debug("analysis complete",
		zap.String("ticker", snap.Ticker),
		zap.Float64("spot", snap.Spot),
		zap.Int("contracts", len(snap.Contracts)),
		zap.Int("candidates", len(near)),
		zap.Int("confluence", a.Recommendation.Score),
		zap.String("state", string(a.Recommendation.State)),
	)
	return a
}
