package feed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/chain"
	"github.com/pintscoredd/zerodte/internal/config"
	"github.com/pintscoredd/zerodte/internal/session"
)

// Service assembles full market snapshots from the raw feed: the
// underlying quote, the same-day chain and the volatility term
// structure. Snapshots are cached for a short TTL; the analytics
// downstream stay cache-free.
type Service struct {
	client  Client
	session *session.Session
	cache   *snapshotCache
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(client Client, sess *session.Session, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:  client,
		session: sess,
		cache:   newSnapshotCache(ttl),
		logger:  logger,
		now:     time.Now,
	}
}

// Snapshot fetches (or serves from cache) the current market state for
// one ticker. Malformed chain rows are carried as disabled contracts
// and skipped by every analytic; a failed term-structure read degrades
// to unknown rather than failing the snapshot.
func (s *Service) Snapshot(ctx context.Context, ticker string) (chain.Snapshot, error) {
	if snap, ok := s.cache.get(ticker); ok {
		return snap, nil
	}

	quote, err := s.client.Quote(ctx, ticker)
	if err != nil {
		return chain.Snapshot{}, fmt.Errorf("fetching quote for %s: %w", ticker, err)
	}

	expiry := s.session.TradeDate(s.now())
	resp, err := s.client.Chain(ctx, ticker, expiry)
	if err != nil {
		return chain.Snapshot{}, fmt.Errorf("fetching chain for %s: %w", ticker, err)
	}

	contracts := make([]chain.Contract, 0, len(resp.Entries))
	malformed := 0
	for _, e := range resp.Entries {
		c := chain.NewContract(e.Symbol, e.Bid, e.Ask, e.Last, chain.Greeks{
			IV:    e.IV,
			Delta: e.Delta,
			Gamma: e.Gamma,
			Theta: e.Theta,
			Vega:  e.Vega,
		}, e.OpenInterest, e.Volume)
		if !c.Tradable() {
			malformed++
		}
		contracts = append(contracts, c)
	}
	if malformed > 0 {
		s.logger.Debug("chain rows failed to parse",
			zap.String("ticker", ticker),
			zap.Int("malformed", malformed),
			zap.Int("total", len(resp.Entries)))
	}

	snap := chain.Snapshot{
		Ticker:    ticker,
		Spot:      quote.Last,
		VWAP:      quote.VWAP,
		Term:      s.TermStructure(ctx),
		Taken:     s.now(),
		Contracts: chain.NewChain(contracts),
	}
	s.cache.set(ticker, snap)
	return snap, nil
}

// TermStructure reads the short-dated volatility curve: the 9-day index
// trading under the 30-day index means contango, over it means
// backwardation. Any missing or non-positive print degrades to unknown.
func (s *Service) TermStructure(ctx context.Context) chain.TermStructure {
	front, err := s.client.Quote(ctx, config.TermFrontSymbol)
	if err != nil {
		s.logger.Debug("term structure front leg unavailable", zap.Error(err))
		return chain.TermUnknown
	}
	back, err := s.client.Quote(ctx, config.TermBackSymbol)
	if err != nil {
		s.logger.Debug("term structure back leg unavailable", zap.Error(err))
		return chain.TermUnknown
	}

	if front.Last <= 0 || back.Last <= 0 {
		return chain.TermUnknown
	}
	switch {
	case front.Last < back.Last:
		return chain.Contango
	case front.Last > back.Last:
		return chain.Backwardation
	}
	return chain.TermUnknown
}
