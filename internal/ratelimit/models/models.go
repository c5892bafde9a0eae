package models

import (
	"strings"
	"time"
)

// Window is a request allowance over a period, e.g. 60 per minute.
type Window struct {
	Limit  int
	Period time.Duration
}

// Result is the outcome of one limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time

	// RetryAfter is only set when the request was refused.
	RetryAfter time.Duration
}

// Lockout is the failed-login state of one email and client address.
type Lockout struct {
	FailureCount int
	LockedUntil  *time.Time
}

func (l *Lockout) IsLockedAt(now time.Time) bool {
	return l != nil && l.LockedUntil != nil && now.Before(*l.LockedUntil)
}

// Key joins segments with ':'. A ':' inside a segment is replaced so a
// client-supplied email cannot reach into another subject's bucket.
func Key(segments ...string) string {
	clean := make([]string, len(segments))
	for i, s := range segments {
		clean[i] = strings.ReplaceAll(s, ":", "_")
	}
	return strings.Join(clean, ":")
}
