package client

import (
	"sync"
	"time"
)

// DefaultRevealInterval is the cadence of the reveal animation.
const DefaultRevealInterval = 100 * time.Millisecond

// Revealer replays an already-complete assistant reply as its successive
// prefixes, one rune longer per step. It is a single sequence with one
// cursor, so the revealed length is monotonically increasing no matter how
// the steps are scheduled, and it can be stopped early. The animation is
// purely cosmetic: the full text is in hand before the first step.
type Revealer struct {
	mu       sync.Mutex
	runes    []rune
	shown    int
	interval time.Duration
	stopped  bool
}

// NewRevealer builds a revealer over text stepping at the given interval.
func NewRevealer(text string, interval time.Duration) *Revealer {
	if interval <= 0 {
		interval = DefaultRevealInterval
	}
	return &Revealer{runes: []rune(text), interval: interval}
}

// Interval returns the scheduling cadence for reveal steps.
func (r *Revealer) Interval() time.Duration {
	return r.interval
}

// Next yields the next longer prefix. ok is false once the full text has
// been produced or the revealer was stopped.
func (r *Revealer) Next() (prefix string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped || r.shown >= len(r.runes) {
		return string(r.runes[:r.shown]), false
	}
	r.shown++
	return string(r.runes[:r.shown]), true
}

// Done reports whether the sequence has been exhausted or stopped.
func (r *Revealer) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped || r.shown >= len(r.runes)
}

// Stop cancels the remaining steps.
func (r *Revealer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
}

// Full returns the complete text being revealed.
func (r *Revealer) Full() string {
	return string(r.runes)
}
