package workout

import (
	"strconv"
	"sync"
	"time"
)

// idDigits is how many trailing digits of the millisecond clock form an id.
const idDigits = 8

// IDGenerator hands out ids from the tail of the millisecond clock. Two
// calls inside the same millisecond still get distinct ids because the
// generator never reuses or goes below the last value it issued.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
}

// NewIDGenerator returns a ready generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next returns the id for a workout created at t.
func (g *IDGenerator) Next(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := t.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms

	s := strconv.FormatInt(ms, 10)
	if len(s) > idDigits {
		s = s[len(s)-idDigits:]
	}
	return s
}
