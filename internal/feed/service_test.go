package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pintscoredd/zerodte/internal/chain"
	"github.com/pintscoredd/zerodte/internal/session"
)

type mockClient struct {
	quotes     map[string]Quote
	chainResp  ChainResponse
	chainErr   error
	gotExpiry  string
	quoteCalls int
	chainCalls int
}

func (m *mockClient) Quote(_ context.Context, symbol string) (Quote, error) {
	m.quoteCalls++
	q, ok := m.quotes[symbol]
	if !ok {
		return Quote{}, ErrNotFound
	}
	return q, nil
}

func (m *mockClient) Chain(_ context.Context, _ string, expiry string) (ChainResponse, error) {
	m.chainCalls++
	m.gotExpiry = expiry
	if m.chainErr != nil {
		return ChainResponse{}, m.chainErr
	}
	return m.chainResp, nil
}

func fixedNow() time.Time {
	return time.Date(2024, 8, 30, 15, 0, 0, 0, time.UTC) // 11:00 ET
}

func newTestService(t *testing.T, client Client, ttl time.Duration) *Service {
	t.Helper()
	sess, err := session.New(session.DefaultTimezone)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	s := NewService(client, sess, ttl, nil)
	s.now = fixedNow
	s.cache.now = fixedNow
	return s
}

func TestSnapshotAssembly(t *testing.T) {
	mock := &mockClient{
		quotes: map[string]Quote{
			"SPY":   {Symbol: "SPY", Last: 100, VWAP: 99.5},
			"VIX9D": {Symbol: "VIX9D", Last: 14.2},
			"VIX":   {Symbol: "VIX", Last: 16.1},
		},
		chainResp: ChainResponse{
			Ticker: "SPY",
			Entries: []ChainEntry{
				{Symbol: "SPY240830C00100000", Bid: 1.00, Ask: 1.10, Delta: 0.5, Gamma: 0.05, OpenInterest: 100},
				{Symbol: "SPY240830P00099000", Bid: 0.80, Ask: 0.90, Delta: -0.4, Gamma: 0.04, OpenInterest: 80},
				{Symbol: "garbage", Bid: 1.00, Ask: 1.10},
			},
		},
	}

	snap, err := newTestService(t, mock, 0).Snapshot(context.Background(), "SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Ticker != "SPY" || snap.Spot != 100 || snap.VWAP != 99.5 {
		t.Errorf("unexpected snapshot header: %+v", snap)
	}
	if snap.Term != chain.Contango {
		t.Errorf("term = %s, want contango", snap.Term)
	}
	if mock.gotExpiry != "2024-08-30" {
		t.Errorf("requested expiry %q, want same-day 2024-08-30", mock.gotExpiry)
	}

	if len(snap.Contracts) != 3 {
		t.Fatalf("contracts = %d, want 3 (malformed rows stay as disabled)", len(snap.Contracts))
	}
	// Sorted ascending; the disabled row has strike 0 and sorts first.
	if snap.Contracts[0].Tradable() {
		t.Error("contracts[0] should be the disabled row")
	}
	if snap.Contracts[1].Strike != 99 || snap.Contracts[1].Type != chain.Put {
		t.Errorf("contracts[1] = %+v, want the 99 put", snap.Contracts[1])
	}
	if snap.Contracts[2].Strike != 100 || snap.Contracts[2].Mid != 1.05 {
		t.Errorf("contracts[2] = %+v, want the 100 call at mid 1.05", snap.Contracts[2])
	}
}

func TestSnapshotCacheHitAndExpiry(t *testing.T) {
	mock := &mockClient{
		quotes: map[string]Quote{
			"SPY": {Symbol: "SPY", Last: 100, VWAP: 99.5},
		},
		chainResp: ChainResponse{
			Entries: []ChainEntry{{Symbol: "SPY240830C00100000", Bid: 1.00, Ask: 1.10}},
		},
	}
	svc := newTestService(t, mock, 30*time.Second)

	if _, err := svc.Snapshot(context.Background(), "SPY"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Snapshot(context.Background(), "SPY"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.chainCalls != 1 {
		t.Errorf("chain calls = %d, want 1 (second snapshot from cache)", mock.chainCalls)
	}

	// Move past the TTL; the next snapshot must hit the feed again.
	later := func() time.Time { return fixedNow().Add(31 * time.Second) }
	svc.now = later
	svc.cache.now = later

	if _, err := svc.Snapshot(context.Background(), "SPY"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.chainCalls != 2 {
		t.Errorf("chain calls = %d, want 2 after TTL expiry", mock.chainCalls)
	}
}

func TestSnapshotQuoteErrorPropagates(t *testing.T) {
	mock := &mockClient{quotes: map[string]Quote{}}

	_, err := newTestService(t, mock, 0).Snapshot(context.Background(), "SPY")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotChainErrorPropagates(t *testing.T) {
	mock := &mockClient{
		quotes:   map[string]Quote{"SPY": {Symbol: "SPY", Last: 100}},
		chainErr: ErrRateLimited,
	}

	_, err := newTestService(t, mock, 0).Snapshot(context.Background(), "SPY")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestTermStructure(t *testing.T) {
	tests := []struct {
		name   string
		quotes map[string]Quote
		want   chain.TermStructure
	}{
		{
			name:   "front under back is contango",
			quotes: map[string]Quote{"VIX9D": {Last: 14}, "VIX": {Last: 16}},
			want:   chain.Contango,
		},
		{
			name:   "front over back is backwardation",
			quotes: map[string]Quote{"VIX9D": {Last: 19}, "VIX": {Last: 16}},
			want:   chain.Backwardation,
		},
		{
			name:   "missing front leg",
			quotes: map[string]Quote{"VIX": {Last: 16}},
			want:   chain.TermUnknown,
		},
		{
			name:   "zero print",
			quotes: map[string]Quote{"VIX9D": {Last: 0}, "VIX": {Last: 16}},
			want:   chain.TermUnknown,
		},
		{
			name:   "flat curve",
			quotes: map[string]Quote{"VIX9D": {Last: 16}, "VIX": {Last: 16}},
			want:   chain.TermUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &mockClient{quotes: tt.quotes}, 0)
			if got := svc.TermStructure(context.Background()); got != tt.want {
				t.Errorf("term = %s, want %s", got, tt.want)
			}
		})
	}
}
