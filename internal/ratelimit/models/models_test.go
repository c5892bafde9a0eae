package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "ip:203.0.113.9", Key("ip", "203.0.113.9"))
	assert.Equal(t, "login:a_b@example.lk:2001_db8__1", Key("login", "a:b@example.lk", "2001:db8::1"))
}

func TestLockoutIsLockedAt(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	until := now.Add(time.Minute)

	var none *Lockout
	assert.False(t, none.IsLockedAt(now))
	assert.False(t, (&Lockout{FailureCount: 3}).IsLockedAt(now))
	assert.True(t, (&Lockout{LockedUntil: &until}).IsLockedAt(now))
	assert.False(t, (&Lockout{LockedUntil: &until}).IsLockedAt(until))
}
