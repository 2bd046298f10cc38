package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/pintscoredd/zerodte/internal/chain"
	"github.com/pintscoredd/zerodte/internal/score"
)

func testContract(typ chain.OptionType, strike, delta, gamma float64, oi int) chain.Contract {
	return chain.Contract{
		Symbol:       "test",
		Strike:       strike,
		Type:         typ,
		Bid:          1.00,
		Ask:          1.10,
		Mid:          1.05,
		Last:         1.00,
		Greeks:       chain.Greeks{IV: 0.20, Delta: delta, Gamma: gamma, Theta: -0.05},
		OpenInterest: oi,
		Volume:       10,
	}
}

func snapshot(spot, vwap float64, term chain.TermStructure, contracts ...chain.Contract) chain.Snapshot {
	return chain.Snapshot{
		Ticker:    "SPY",
		Spot:      spot,
		VWAP:      vwap,
		Term:      term,
		Taken:     time.Date(2024, 8, 30, 14, 30, 0, 0, time.UTC),
		Contracts: chain.NewChain(contracts),
	}
}

func TestAnalyzeUnusableSnapshot(t *testing.T) {
	e := New(Config{}, nil)

	if a := e.Analyze(snapshot(0, 100, chain.TermUnknown, testContract(chain.Call, 100, 0.3, 0.01, 10))); a != nil {
		t.Error("non-positive spot must yield nil")
	}
	if a := e.Analyze(snapshot(100, 100, chain.TermUnknown)); a != nil {
		t.Error("empty chain must yield nil")
	}

	disabled := chain.Contract{Symbol: "bad", Strike: 0, Type: chain.TypeUnknown}
	if a := e.Analyze(snapshot(100, 100, chain.TermUnknown, disabled)); a != nil {
		t.Error("chain of disabled contracts must yield nil")
	}
}

func TestAnalyzeBullishModerate(t *testing.T) {
	// Confluence +2: spot>VWAP +1, spot>flip +1, PCR 0.00 +1,
	// backwardation -1. Candidate window holds only the 100 call.
	snap := snapshot(100, 99, chain.Backwardation,
		testContract(chain.Call, 98, 0.55, 0.01, 10),
		testContract(chain.Call, 100, 0.30, 0.04, 5),
		testContract(chain.Call, 105, 0.05, 0.05, 100),
	)

	a := New(Config{}, nil).Analyze(snap)
	if a == nil {
		t.Fatal("expected analysis")
	}
	rec := a.Recommendation

	if rec.State != StateActionable {
		t.Fatalf("state = %s, want actionable (rationale: %s)", rec.State, rec.Rationale)
	}
	if rec.Score != 2 {
		t.Errorf("score = %d, want 2", rec.Score)
	}
	if rec.Bias != score.Bullish {
		t.Errorf("bias = %s, want bullish", rec.Bias)
	}
	if rec.Confidence != Moderate {
		t.Errorf("confidence = %s, want MODERATE", rec.Confidence)
	}
	if !strings.Contains(rec.Headline, "BUY CALL") {
		t.Errorf("headline = %q, want BUY CALL", rec.Headline)
	}
	if rec.Contract == nil || rec.Contract.Strike != 100 || rec.Contract.Type != chain.Call {
		t.Fatalf("contract = %+v, want the 100 call", rec.Contract)
	}
	if rec.Target != 1000 {
		t.Errorf("target = %v, want 1000 (strike scaled x10)", rec.Target)
	}
	if rec.ProfitLevel == nil || *rec.ProfitLevel != 1050 {
		t.Errorf("profit level = %v, want 1050 (heaviest wall above target)", rec.ProfitLevel)
	}
	if rec.StopLevel == nil || *rec.StopLevel != 980 {
		t.Errorf("stop level = %v, want 980 (max pain scaled)", rec.StopLevel)
	}
	if len(rec.Met) != 3 || len(rec.Failed) != 1 {
		t.Errorf("met/failed = %d/%d, want 3/1", len(rec.Met), len(rec.Failed))
	}
	if rec.Rationale == "" || !strings.Contains(rec.Rationale, "Score") {
		t.Errorf("rationale %q must include the scoring line", rec.Rationale)
	}
}

func TestAnalyzeBearishHighSwapsConditions(t *testing.T) {
	// All four signals bearish: spot<VWAP, flip above spot, PCR 5.00,
	// backwardation. Score -4, HIGH, and met must carry the bearish
	// labels while failed stays empty.
	snap := snapshot(100, 102, chain.Backwardation,
		testContract(chain.Put, 99, -0.35, 0.02, 50),
		testContract(chain.Call, 103, 0.10, 0.05, 10),
	)

	a := New(Config{}, nil).Analyze(snap)
	if a == nil {
		t.Fatal("expected analysis")
	}
	rec := a.Recommendation

	if rec.State != StateActionable {
		t.Fatalf("state = %s, want actionable (rationale: %s)", rec.State, rec.Rationale)
	}
	if rec.Score != -4 {
		t.Errorf("score = %d, want -4", rec.Score)
	}
	if rec.Bias != score.Bearish {
		t.Errorf("bias = %s, want bearish", rec.Bias)
	}
	if rec.Confidence != High {
		t.Errorf("confidence = %s, want HIGH", rec.Confidence)
	}
	if !strings.Contains(rec.Headline, "BUY PUT 990") {
		t.Errorf("headline = %q, want BUY PUT 990", rec.Headline)
	}
	if len(rec.Met) != 4 || len(rec.Failed) != 0 {
		t.Fatalf("met/failed = %d/%d, want 4/0", len(rec.Met), len(rec.Failed))
	}
	for _, label := range rec.Met {
		if strings.Contains(label, "above VWAP") || strings.Contains(label, "call demand") {
			t.Errorf("met label %q reads bullish for a bearish bias", label)
		}
	}
	if rec.ProfitLevel != nil {
		t.Errorf("no wall exists below the target, got %v", *rec.ProfitLevel)
	}
	if rec.StopLevel == nil || *rec.StopLevel != 990 {
		t.Errorf("stop level = %v, want 990", rec.StopLevel)
	}
}

func TestAnalyzeMixedSignals(t *testing.T) {
	// spot<VWAP -1, spot>flip +1, PCR 0.00 +1, backwardation -1 -> 0.
	snap := snapshot(100, 101, chain.Backwardation,
		testContract(chain.Call, 98, 0.55, 0.01, 10),
		testContract(chain.Call, 100, 0.30, 0.04, 5),
	)

	a := New(Config{}, nil).Analyze(snap)
	if a == nil {
		t.Fatal("expected analysis")
	}
	rec := a.Recommendation

	if rec.State != StateMixed {
		t.Fatalf("state = %s, want mixed", rec.State)
	}
	if rec.Score != 0 {
		t.Errorf("score = %d, want 0", rec.Score)
	}
	if rec.Headline != "Mixed Signals" {
		t.Errorf("headline = %q, want Mixed Signals", rec.Headline)
	}
	if rec.Confidence != Low {
		t.Errorf("confidence = %s, want LOW", rec.Confidence)
	}
	if rec.Contract != nil || rec.Target != 0 {
		t.Error("mixed state must carry no contract or levels")
	}
}

func TestAnalyzeNoCandidate(t *testing.T) {
	// Bullish +2 but the only call in the band has delta 0.55.
	snap := snapshot(100, 99, chain.Backwardation,
		testContract(chain.Call, 98, 0.55, 0.01, 10),
		testContract(chain.Call, 100, 0.55, 0.04, 5),
	)

	a := New(Config{}, nil).Analyze(snap)
	if a == nil {
		t.Fatal("expected analysis")
	}
	rec := a.Recommendation

	if rec.State != StateNoCandidate {
		t.Fatalf("state = %s, want no_candidate", rec.State)
	}
	if rec.Headline != "No suitable option found" {
		t.Errorf("headline = %q", rec.Headline)
	}
	if rec.Confidence != Low {
		t.Errorf("confidence = %s, want LOW", rec.Confidence)
	}
	if rec.Bias != score.Bullish {
		t.Errorf("bias = %s, want bullish", rec.Bias)
	}
}

func TestAnalyzeProfileUsesFullChain(t *testing.T) {
	// The 105 strike sits outside the 2% candidate band but must still
	// appear in the exposure profile and the max-pain solve.
	snap := snapshot(100, 99, chain.TermUnknown,
		testContract(chain.Call, 100, 0.30, 0.05, 100),
		testContract(chain.Put, 105, -0.80, 0.03, 100),
	)

	a := New(Config{}, nil).Analyze(snap)
	if a == nil {
		t.Fatal("expected analysis")
	}
	if len(a.Profile) != 2 {
		t.Fatalf("profile levels = %d, want 2", len(a.Profile))
	}
	if a.Profile[1].Strike != 105 {
		t.Errorf("profile[1].strike = %v, want 105", a.Profile[1].Strike)
	}
	if a.MaxPain == nil {
		t.Fatal("expected a max pain strike")
	}
}

func TestAnalyzeScaleConfig(t *testing.T) {
	snap := snapshot(100, 99, chain.Contango,
		testContract(chain.Call, 100, 0.30, 0.04, 5),
	)

	a := New(Config{Scale: 1}, nil).Analyze(snap)
	if a == nil {
		t.Fatal("expected analysis")
	}
	rec := a.Recommendation
	if rec.State != StateActionable {
		t.Fatalf("state = %s, want actionable", rec.State)
	}
	if rec.Target != 100 {
		t.Errorf("target = %v, want unscaled 100", rec.Target)
	}
}

func TestConfluenceSpotAtVWAPLeansBearish(t *testing.T) {
	snap := snapshot(100, 100, chain.TermUnknown)
	a := &Analysis{}
	total, signals := confluence(snap, a)
	if total != -1 {
		t.Errorf("score = %d, want -1 when spot equals VWAP", total)
	}
	if len(signals) != 1 {
		t.Errorf("signals = %d, want 1 (flip, PCR and term absent)", len(signals))
	}
}

func TestConfluencePCRDeadZone(t *testing.T) {
	pcr := 0.9
	snap := snapshot(100, 99, chain.TermUnknown)
	total, signals := confluence(snap, &Analysis{PCR: &pcr})
	if total != 1 {
		t.Errorf("score = %d, want 1 (PCR in 0.8..1.0 contributes nothing)", total)
	}
	if len(signals) != 2 {
		t.Fatalf("signals = %d, want 2", len(signals))
	}
	met, failed := splitConditions(signals, score.Bullish)
	if len(met) != 1 || len(failed) != 0 {
		t.Errorf("neutral PCR must appear in neither list, met/failed = %d/%d", len(met), len(failed))
	}
}

func TestRecommendationSummary(t *testing.T) {
	rec := Recommendation{
		State:      StateActionable,
		Headline:   "BUY CALL 1000 @ 1.05",
		Confidence: Moderate,
		Score:      2,
	}
	if got := rec.Summary(); got != "BUY CALL 1000 @ 1.05 (MODERATE, score +2)" {
		t.Errorf("summary = %q", got)
	}

	rec = Recommendation{State: StateMixed, Headline: "Mixed Signals", Confidence: Low, Score: 0}
	if got := rec.Summary(); got != "Mixed Signals (score +0, LOW)" {
		t.Errorf("summary = %q", got)
	}
}
