package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pintscoredd/zerodte/internal/chain"
	"github.com/pintscoredd/zerodte/internal/score"
)

// Confidence buckets a recommendation by confluence strength.
type Confidence string

const (
	High     Confidence = "HIGH"
	Moderate Confidence = "MODERATE"
	Low      Confidence = "LOW"
)

// State labels the terminal outcome of one recommendation pass.
type State string

const (
	// StateMixed means the confluence score landed in the dead zone.
	StateMixed State = "mixed_signals"
	// StateNoCandidate means a direction was picked but no contract
	// passed the delta/mid/gamma filters.
	StateNoCandidate State = "no_candidate"
	// StateActionable carries a concrete contract and levels.
	StateActionable State = "actionable"
)

const (
	headlineMixed       = "Mixed Signals"
	headlineNoCandidate = "No suitable option found"
)

// Recommendation is the engine's verdict for one snapshot. Met lists
// the confluence conditions supporting the chosen bias, Failed the ones
// leaning the other way. For terminal no-trade states only the header,
// score, lists and rationale are populated.
type Recommendation struct {
	State      State      `json:"state"`
	Headline   string     `json:"headline"`
	Bias       score.Bias `json:"bias,omitempty"`
	Confidence Confidence `json:"confidence"`
	Score      int        `json:"score"`
	Met        []string   `json:"met"`
	Failed     []string   `json:"failed"`
	Rationale  string     `json:"rationale"`

	Contract  *chain.Contract  `json:"contract,omitempty"`
	Breakdown *score.Breakdown `json:"breakdown,omitempty"`

	// Levels quoted on the tracked index scale.
	Target      float64  `json:"target,omitempty"`
	ProfitLevel *float64 `json:"profit_level,omitempty"`
	StopLevel   *float64 `json:"stop_level,omitempty"`
}

// Summary is the one-line form appended to the trade journal.
func (r Recommendation) Summary() string {
	if r.State != StateActionable {
		return fmt.Sprintf("%s (score %+d, %s)", r.Headline, r.Score, r.Confidence)
	}
	return fmt.Sprintf("%s (%s, score %+d)", r.Headline, r.Confidence, r.Score)
}

// signal is one confluence input. vote is +1, -1 or 0; the labels
// describe the observation from each side's perspective.
type signal struct {
	vote int
	bull string
	bear string
}

func confluence(snap chain.Snapshot, a *Analysis) (int, []signal) {
	var signals []signal

	s := signal{bull: "spot above VWAP", bear: "spot below VWAP", vote: -1}
	if snap.Spot > snap.VWAP {
		s.vote = 1
	}
	signals = append(signals, s)

	if a.Flip != nil {
		s = signal{
			bull: fmt.Sprintf("spot above gamma flip %s", trimFloat(*a.Flip)),
			bear: fmt.Sprintf("spot below gamma flip %s", trimFloat(*a.Flip)),
			vote: -1,
		}
		if snap.Spot > *a.Flip {
			s.vote = 1
		}
		signals = append(signals, s)
	}

	if a.PCR != nil {
		s = signal{
			bull: fmt.Sprintf("PCR %.2f shows call demand", *a.PCR),
			bear: fmt.Sprintf("PCR %.2f shows put demand", *a.PCR),
		}
		switch {
		case *a.PCR < 0.8:
			s.vote = 1
		case *a.PCR > 1.0:
			s.vote = -1
		}
		signals = append(signals, s)
	}

	if snap.Term == chain.Contango || snap.Term == chain.Backwardation {
		s = signal{bull: "vol term structure in contango", bear: "vol term structure in backwardation", vote: -1}
		if snap.Term == chain.Contango {
			s.vote = 1
		}
		signals = append(signals, s)
	}

	total := 0
	for _, sg := range signals {
		total += sg.vote
	}
	return total, signals
}

// splitConditions sorts signal labels into supporting and opposing
// lists for the chosen bias. Neutral votes appear in neither.
func splitConditions(signals []signal, bias score.Bias) (met, failed []string) {
	for _, s := range signals {
		switch {
		case s.vote > 0 && bias == score.Bullish:
			met = append(met, s.bull)
		case s.vote > 0 && bias == score.Bearish:
			failed = append(failed, s.bull)
		case s.vote < 0 && bias == score.Bearish:
			met = append(met, s.bear)
		case s.vote < 0 && bias == score.Bullish:
			failed = append(failed, s.bear)
		}
	}
	return met, failed
}

func (e *Engine) recommend(snap chain.Snapshot, a *Analysis, near chain.Chain) Recommendation {
	total, signals := confluence(snap, a)

	if total > -2 && total < 2 {
		met, failed := splitConditions(signals, score.Bullish)
		return Recommendation{
			State:      StateMixed,
			Headline:   headlineMixed,
			Confidence: Low,
			Score:      total,
			Met:        met,
			Failed:     failed,
			Rationale:  fmt.Sprintf("confluence score %+d is inside the no-trade band; standing aside", total),
		}
	}

	bias := score.Bullish
	if total <= -2 {
		bias = score.Bearish
	}
	met, failed := splitConditions(signals, bias)

	target, breakdown, ok := score.SelectTarget(near, bias)
	if !ok {
		return Recommendation{
			State:      StateNoCandidate,
			Headline:   headlineNoCandidate,
			Bias:       bias,
			Confidence: Low,
			Score:      total,
			Met:        met,
			Failed:     failed,
			Rationale:  fmt.Sprintf("%s confluence %+d but no contract passed the delta, mid and gamma filters", bias, total),
		}
	}

	confidence := Moderate
	if total >= 3 || total <= -3 {
		confidence = High
	}

	rec := Recommendation{
		State:      StateActionable,
		Headline:   headline(target, e.scale),
		Bias:       bias,
		Confidence: confidence,
		Score:      total,
		Met:        met,
		Failed:     failed,
		Contract:   &target,
		Breakdown:  &breakdown,
		Target:     target.Strike * e.scale,
	}
	if wall, found := a.Profile.Wall(target.Strike, bias == score.Bullish); found {
		profit := wall.Strike * e.scale
		rec.ProfitLevel = &profit
	}
	if a.MaxPain != nil {
		stop := *a.MaxPain * e.scale
		rec.StopLevel = &stop
	}
	rec.Rationale = rationale(rec, target, breakdown)
	return rec
}

func headline(c chain.Contract, scale float64) string {
	side := "CALL"
	if c.Type == chain.Put {
		side = "PUT"
	}
	return fmt.Sprintf("BUY %s %s @ %.2f", side, trimFloat(c.Strike*scale), c.Mid)
}

func rationale(rec Recommendation, c chain.Contract, b score.Breakdown) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s confluence %+d: %s.", rec.Bias, rec.Score, strings.Join(rec.Met, ", "))
	fmt.Fprintf(&sb, " Greeks: delta %.2f, gamma %.4f, theta %.2f, IV %.1f%%.",
		c.Greeks.Delta, c.Greeks.Gamma, c.Greeks.Theta, c.Greeks.IV*100)
	fmt.Fprintf(&sb, " Score %.2f (delta %.2f, gamma/theta %.2f, liquidity %.2f, flow %.2f, iv %.2f).",
		b.Total, b.Delta, b.GammaTheta, b.Liquidity, b.Flow, b.IVValue)
	return sb.String()
}

// trimFloat renders a level without trailing zeros (5450, 5452.5).
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
