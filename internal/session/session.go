// Package session answers market-calendar questions: whether the NYSE
// session is open, which date same-day contracts expire on, and how
// that date appears inside option symbols.
package session

import (
	"fmt"
	"time"

	"github.com/scmhub/calendar"
)

// DefaultTimezone is the exchange timezone.
const DefaultTimezone = "America/New_York"

// Regular session hours, exchange-local.
const (
	openHour    = 9
	openMinute  = 30
	closeHour   = 16
	closeMinute = 0
)

// Session wraps the NYSE trading calendar in a fixed timezone.
type Session struct {
	loc  *time.Location
	nyse *calendar.Calendar
}

// New builds a Session for the given timezone. Session hours are
// evaluated in that timezone, so an unresolvable name is an error
// rather than a fallback.
func New(timezone string) (*Session, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}
	return &Session{
		loc:  loc,
		nyse: calendar.XNYS(),
	}, nil
}

// IsMarketDay checks if the given instant falls on a trading day (not
// weekend/holiday).
func (s *Session) IsMarketDay(t time.Time) bool {
	return s.nyse.IsBusinessDay(t.In(s.loc))
}

// IsOpen reports whether the regular session is trading at t. The
// close boundary is exclusive.
func (s *Session) IsOpen(t time.Time) bool {
	local := t.In(s.loc)
	if !s.nyse.IsBusinessDay(local) {
		return false
	}
	y, m, d := local.Date()
	open := time.Date(y, m, d, openHour, openMinute, 0, 0, s.loc)
	close := time.Date(y, m, d, closeHour, closeMinute, 0, 0, s.loc)
	return !local.Before(open) && local.Before(close)
}

// TradeDate returns the session date at t in YYYY-MM-DD form. Same-day
// contracts expire on this date.
func (s *Session) TradeDate(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}

// SymbolExpiry returns the session date in the YYMMDD form embedded in
// option symbols.
func (s *Session) SymbolExpiry(t time.Time) string {
	return t.In(s.loc).Format("060102")
}

// Location returns the session's timezone location.
func (s *Session) Location() *time.Location {
	return s.loc
}
