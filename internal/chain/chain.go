// Package chain holds the option chain data model shared by the feed,
// the analytics and the decision engine. A chain is rebuilt from scratch
// on every snapshot; nothing in this package mutates in place.
package chain

import (
	"sort"
	"time"
)

// TermStructure classifies the short-dated volatility curve.
type TermStructure string

const (
	Contango      TermStructure = "contango"
	Backwardation TermStructure = "backwardation"
	TermUnknown   TermStructure = "unknown"
)

// Chain is a strike-ascending collection of contracts for one underlying
// and one expiry.
type Chain []Contract

// NewChain sorts contracts ascending by strike. Disabled contracts sort
// to the front (strike 0) and stay in the chain; consumers skip them.
func NewChain(contracts []Contract) Chain {
	out := make(Chain, len(contracts))
	copy(out, contracts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Strike < out[j].Strike
	})
	return out
}

// Filter keeps tradable contracts whose strike lies within band around
// spot, e.g. band 0.02 keeps strikes in [spot*0.98, spot*1.02]. A
// non-positive spot has no meaningful band and yields an empty chain.
func (ch Chain) Filter(spot, band float64) Chain {
	if spot <= 0 {
		return Chain{}
	}
	low := spot * (1 - band)
	high := spot * (1 + band)

	out := make(Chain, 0, len(ch))
	for _, c := range ch {
		if !c.Tradable() {
			continue
		}
		if c.Strike < low || c.Strike > high {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Snapshot is one fetch of the market state for a ticker: the spot
// reference, the session VWAP, the volatility term structure and the
// full same-day option chain.
type Snapshot struct {
	Ticker    string        `json:"ticker"`
	Spot      float64       `json:"spot"`
	VWAP      float64       `json:"vwap"`
	Term      TermStructure `json:"term_structure"`
	Taken     time.Time     `json:"taken"`
	Contracts Chain         `json:"contracts"`
}
