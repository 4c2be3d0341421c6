// Package mentions enforces the daily @here allowance inside slot channels.
package mentions

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// DefaultLimit is the number of @here pings a slot owner may use per day.
const DefaultLimit = 2

// NextMidnight returns the first local midnight strictly after t.
func NextMidnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// Limiter counts rate-limited mentions per user until the next reset boundary.
type Limiter struct {
	mu       sync.Mutex
	loc      *time.Location
	limit    int
	counts   map[snowflake.ID]int
	overall  int
	boundary time.Time
}

func NewLimiter(loc *time.Location, limit int, now time.Time) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Limiter{
		loc:      loc,
		limit:    limit,
		counts:   make(map[snowflake.ID]int),
		boundary: NextMidnight(now, loc),
	}
}

func (l *Limiter) Limit() int { return l.limit }

// Increment records one mention by userID and returns the user's count since the last reset.
func (l *Limiter) Increment(userID snowflake.ID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.overall++
	l.counts[userID]++
	return l.counts[userID]
}

// Exceeded reports whether count is over the daily allowance.
func (l *Limiter) Exceeded(count int) bool {
	return count > l.limit
}

func (l *Limiter) Count(userID snowflake.ID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[userID]
}

func (l *Limiter) Overall() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.overall
}

func (l *Limiter) Boundary() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.boundary
}

// ResetIfDue zeroes all counters once now has reached the boundary. The boundary moves forward
// one calendar day from its previous value, repeatedly if several days were missed, so it is
// always the next midnight after now and never drifts with the polling delay.
func (l *Limiter) ResetIfDue(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Before(l.boundary) {
		return false
	}
	l.counts = make(map[snowflake.ID]int)
	l.overall = 0
	for !now.Before(l.boundary) {
		y, m, d := l.boundary.In(l.loc).Date()
		l.boundary = time.Date(y, m, d+1, 0, 0, 0, 0, l.loc)
	}
	return true
}
