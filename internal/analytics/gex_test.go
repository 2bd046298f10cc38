package analytics

import (
	"math"
	"testing"

	"github.com/pintscoredd/zerodte/internal/chain"
)

func opt(typ chain.OptionType, strike, gamma float64, oi int) chain.Contract {
	return chain.Contract{
		Symbol:       "test",
		Strike:       strike,
		Type:         typ,
		Mid:          1.0,
		Greeks:       chain.Greeks{Gamma: gamma},
		OpenInterest: oi,
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGexProfile(t *testing.T) {
	ch := chain.NewChain([]chain.Contract{
		opt(chain.Call, 100, 0.05, 100),
		opt(chain.Put, 105, 0.03, 100),
	})

	p := Gex(ch, 100)
	if len(p) != 2 {
		t.Fatalf("levels = %d, want 2", len(p))
	}
	if p[0].Strike != 100 || !near(p[0].NetGex, 5.0) {
		t.Errorf("level[0] = %+v, want strike 100 net +5.0", p[0])
	}
	if p[1].Strike != 105 || !near(p[1].NetGex, -3.0) {
		t.Errorf("level[1] = %+v, want strike 105 net -3.0", p[1])
	}
}

func TestGexAccumulatesPerStrike(t *testing.T) {
	ch := chain.NewChain([]chain.Contract{
		opt(chain.Call, 100, 0.02, 50),
		opt(chain.Call, 100, 0.02, 50),
		opt(chain.Put, 100, 0.01, 100),
	})

	p := Gex(ch, 100)
	if len(p) != 1 {
		t.Fatalf("levels = %d, want 1", len(p))
	}
	// calls: 2 * 50*0.02*10000*100/1e6 = +2.0; puts: 100*0.01*10000*100/1e6 = -1.0
	if !near(p[0].CallGex, 2.0) || !near(p[0].PutGex, -1.0) || !near(p[0].NetGex, 1.0) {
		t.Errorf("level = %+v, want call +2.0 put -1.0 net +1.0", p[0])
	}
}

func TestGexNonPositiveSpot(t *testing.T) {
	ch := chain.NewChain([]chain.Contract{opt(chain.Call, 100, 0.05, 100)})
	if p := Gex(ch, 0); len(p) != 0 {
		t.Errorf("spot 0: levels = %d, want 0", len(p))
	}
	if p := Gex(ch, -1); len(p) != 0 {
		t.Errorf("negative spot: levels = %d, want 0", len(p))
	}
}

func TestGexSkipsDisabledContracts(t *testing.T) {
	ch := chain.NewChain([]chain.Contract{
		opt(chain.TypeUnknown, 0, 0.05, 100),
		opt(chain.Call, 100, 0.05, 100),
	})

	p := Gex(ch, 100)
	if len(p) != 1 || p[0].Strike != 100 {
		t.Fatalf("profile = %+v, want single level at 100", p)
	}
}

func TestFlip(t *testing.T) {
	tests := []struct {
		name    string
		nets    []float64
		strikes []float64
		want    float64
		wantOK  bool
	}{
		{
			name:    "transition mid profile",
			strikes: []float64{95, 100, 105, 110},
			nets:    []float64{-2, -1, 3, 4},
			want:    105,
			wantOK:  true,
		},
		{
			name:    "zero counts as non-positive",
			strikes: []float64{95, 100},
			nets:    []float64{0, 1},
			want:    100,
			wantOK:  true,
		},
		{
			name:    "all positive collapses to lowest",
			strikes: []float64{95, 100, 105},
			nets:    []float64{1, 2, 3},
			want:    95,
			wantOK:  true,
		},
		{
			name:    "all negative collapses to highest",
			strikes: []float64{95, 100, 105},
			nets:    []float64{-1, -2, -3},
			want:    105,
			wantOK:  true,
		},
		{
			name:    "positive then negative has no upward crossing",
			strikes: []float64{100, 105},
			nets:    []float64{5, -3},
			want:    105,
			wantOK:  true,
		},
		{
			name:   "empty profile",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := make(GexProfile, 0, len(tt.nets))
			for i, net := range tt.nets {
				p = append(p, GexLevel{Strike: tt.strikes[i], NetGex: net})
			}
			got, ok := p.Flip()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("flip = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWall(t *testing.T) {
	p := GexProfile{
		{Strike: 95, NetGex: -8},
		{Strike: 100, NetGex: 2},
		{Strike: 105, NetGex: 6},
		{Strike: 110, NetGex: -1},
	}

	if lvl, ok := p.Wall(100, true); !ok || lvl.Strike != 105 {
		t.Errorf("wall above 100 = %+v ok=%v, want strike 105", lvl, ok)
	}
	if lvl, ok := p.Wall(100, false); !ok || lvl.Strike != 95 {
		t.Errorf("wall below 100 = %+v ok=%v, want strike 95", lvl, ok)
	}
	if _, ok := p.Wall(110, true); ok {
		t.Error("no wall should exist above the highest strike")
	}
}
