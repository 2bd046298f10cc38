package chain

import "strings"

// OptionType identifies the side of an option contract.
type OptionType string

const (
	Call        OptionType = "call"
	Put         OptionType = "put"
	TypeUnknown OptionType = "unknown"
)

// Greeks holds the per-contract sensitivities reported by the data feed.
type Greeks struct {
	IV    float64 `json:"iv"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}

// Contract is one option instrument at a point in time. Contracts are
// constructed fresh from every snapshot and never mutated; there is no
// identity across snapshots.
type Contract struct {
	Symbol       string     `json:"symbol"`
	Strike       float64    `json:"strike"`
	Type         OptionType `json:"type"`
	Bid          float64    `json:"bid"`
	Ask          float64    `json:"ask"`
	Mid          float64    `json:"mid"`
	Last         float64    `json:"last"`
	Greeks       Greeks     `json:"greeks"`
	OpenInterest int        `json:"open_interest"`
	Volume       int        `json:"volume"`
}

// NewContract builds a Contract from one snapshot entry. The strike and the
// call/put side come out of the OCC-style symbol; the mid price is the
// bid/ask midpoint when both sides are quoted, otherwise the last trade.
func NewContract(symbol string, bid, ask, last float64, greeks Greeks, openInterest, volume int) Contract {
	strike, typ := ParseSymbol(symbol)
	return Contract{
		Symbol:       symbol,
		Strike:       strike,
		Type:         typ,
		Bid:          bid,
		Ask:          ask,
		Mid:          midPrice(bid, ask, last),
		Last:         last,
		Greeks:       greeks,
		OpenInterest: openInterest,
		Volume:       volume,
	}
}

// Tradable reports whether a contract parsed cleanly. Disabled contracts
// (strike 0, unknown side) are carried in the chain but every analytic
// skips them.
func (c Contract) Tradable() bool {
	return c.Strike > 0 && (c.Type == Call || c.Type == Put)
}

// ParseSymbol extracts strike and option side from an OCC-style identifier:
// <root><YYMMDD><C|P><strike*1000 as 8 digits>, with an optional "O:" prefix.
// Anything that does not fit yields the disabled sentinel (0, unknown).
func ParseSymbol(symbol string) (float64, OptionType) {
	sym := strings.TrimPrefix(symbol, "O:")
	if len(sym) < 9 {
		return 0, TypeUnknown
	}

	digits := sym[len(sym)-8:]
	milli := 0
	for i := 0; i < len(digits); i++ {
		d := digits[i]
		if d < '0' || d > '9' {
			return 0, TypeUnknown
		}
		milli = milli*10 + int(d-'0')
	}
	if milli == 0 {
		return 0, TypeUnknown
	}

	var typ OptionType
	switch sym[len(sym)-9] {
	case 'C', 'c':
		typ = Call
	case 'P', 'p':
		typ = Put
	default:
		return 0, TypeUnknown
	}

	return float64(milli) / 1000.0, typ
}

func midPrice(bid, ask, last float64) float64 {
	if bid > 0 && ask > 0 {
		return (bid + ask) / 2
	}
	return last
}
