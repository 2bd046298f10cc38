package analytics

import (
	"testing"

	"github.com/pintscoredd/zerodte/internal/chain"
)

func TestPutCallRatio(t *testing.T) {
	tests := []struct {
		name   string
		callOI []int
		putOI  []int
		want   float64
		wantOK bool
	}{
		{name: "bearish skew", callOI: []int{100}, putOI: []int{150}, want: 1.5, wantOK: true},
		{name: "rounded to two decimals", callOI: []int{300}, putOI: []int{100}, want: 0.33, wantOK: true},
		{name: "no puts", callOI: []int{100}, putOI: nil, want: 0, wantOK: true},
		{name: "zero call interest undefined", callOI: []int{0}, putOI: []int{100}, wantOK: false},
		{name: "no calls at all undefined", callOI: nil, putOI: []int{100}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var contracts []chain.Contract
			for i, oi := range tt.callOI {
				contracts = append(contracts, opt(chain.Call, 100+float64(i), 0.01, oi))
			}
			for i, oi := range tt.putOI {
				contracts = append(contracts, opt(chain.Put, 100+float64(i), 0.01, oi))
			}

			got, ok := PutCallRatio(chain.NewChain(contracts))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("pcr = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPutCallRatioSkipsDisabled(t *testing.T) {
	ch := chain.NewChain([]chain.Contract{
		opt(chain.Call, 100, 0.01, 100),
		opt(chain.Put, 100, 0.01, 80),
		{Symbol: "bad", Strike: 0, Type: chain.TypeUnknown, OpenInterest: 9999},
	})

	got, ok := PutCallRatio(ch)
	if !ok || got != 0.8 {
		t.Errorf("pcr = %v ok=%v, want 0.8", got, ok)
	}
}
