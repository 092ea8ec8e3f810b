package room

import "time"

// submissionLimiter caps how many answers each connection may submit per
// sliding window. It is only ever touched under the owning Room's mutex, so
// it carries no lock of its own.
type submissionLimiter struct {
	max     int
	window  time.Duration
	history map[string][]time.Time
}

func newSubmissionLimiter(max int, window time.Duration) *submissionLimiter {
	return &submissionLimiter{
		max:     max,
		window:  window,
		history: make(map[string][]time.Time),
	}
}

// allow reports whether the connection may submit now. Rejected attempts are
// not recorded, so hammering the server does not extend the penalty.
func (l *submissionLimiter) allow(connID string, now time.Time) bool {
	if l.max <= 0 {
		return true
	}

	cutoff := now.Add(-l.window)
	recent := l.history[connID][:0]
	for _, t := range l.history[connID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.max {
		l.history[connID] = recent
		return false
	}

	l.history[connID] = append(recent, now)
	return true
}

func (l *submissionLimiter) forget(connID string) {
	delete(l.history, connID)
}

func (l *submissionLimiter) reset() {
	clear(l.history)
}
