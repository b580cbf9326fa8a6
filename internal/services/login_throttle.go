package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LoginThrottleConfig holds failed login throttling configuration
type LoginThrottleConfig struct {
	MaxFailures   int           // Failures before the key is locked
	Lockout       time.Duration // Lock duration, also the failure counting window
	SweepInterval time.Duration // How often stale entries are evicted
}

// DefaultLoginThrottleConfig returns the default throttle configuration
func DefaultLoginThrottleConfig() LoginThrottleConfig {
	return LoginThrottleConfig{
		MaxFailures:   5,
		Lockout:       15 * time.Minute,
		SweepInterval: time.Minute,
	}
}

type loginAttempts struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
}

// LoginThrottle counts failed logins per ip+username in process memory and
// locks a key once it reaches the configured number of failures.
// State is lost on restart and is not shared between instances.
type LoginThrottle struct {
	cfg    LoginThrottleConfig
	logger *logrus.Logger
	now    func() time.Time

	mu       sync.Mutex
	attempts map[string]*loginAttempts
}

// NewLoginThrottle creates a new login throttle
func NewLoginThrottle(cfg LoginThrottleConfig, logger *logrus.Logger) *LoginThrottle {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = DefaultLoginThrottleConfig().MaxFailures
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = DefaultLoginThrottleConfig().Lockout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultLoginThrottleConfig().SweepInterval
	}
	return &LoginThrottle{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		attempts: make(map[string]*loginAttempts),
	}
}

func throttleKey(ip, username string) string {
	return ip + "|" + username
}

// Check returns a *ThrottleError while the key is locked out
func (t *LoginThrottle) Check(ip, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.attempts[throttleKey(ip, username)]
	if !ok {
		return nil
	}

	now := t.now()
	if now.Before(entry.lockedUntil) {
		return &ThrottleError{
			Message:    fmt.Sprintf("Too many failed login attempts. Please try again after %s", entry.lockedUntil.Format("15:04:05")),
			RetryAfter: entry.lockedUntil,
		}
	}
	return nil
}

// RecordFailure counts a failed login. Reaching MaxFailures within the
// window locks the key for the lockout duration.
func (t *LoginThrottle) RecordFailure(ip, username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	key := throttleKey(ip, username)
	entry, ok := t.attempts[key]
	if !ok || t.expired(entry, now) {
		entry = &loginAttempts{windowStart: now}
		t.attempts[key] = entry
	}

	entry.failures++
	if entry.failures >= t.cfg.MaxFailures && !now.Before(entry.lockedUntil) {
		entry.lockedUntil = now.Add(t.cfg.Lockout)
		if t.logger != nil {
			t.logger.WithFields(logrus.Fields{
				"ip":           ip,
				"username":     username,
				"failures":     entry.failures,
				"locked_until": entry.lockedUntil,
			}).Warn("Login locked after repeated failures")
		}
	}
}

// Reset clears the key after a successful login
func (t *LoginThrottle) Reset(ip, username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, throttleKey(ip, username))
}

// expired reports whether an entry no longer affects decisions: its lock
// ended and its counting window is over. Caller holds mu.
func (t *LoginThrottle) expired(entry *loginAttempts, now time.Time) bool {
	if now.Before(entry.lockedUntil) {
		return false
	}
	if !entry.lockedUntil.IsZero() {
		return true
	}
	return !now.Before(entry.windowStart.Add(t.cfg.Lockout))
}

// Sweep evicts expired entries and returns how many were removed
func (t *LoginThrottle) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for key, entry := range t.attempts {
		if t.expired(entry, now) {
			delete(t.attempts, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (t *LoginThrottle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.attempts)
}

// Start runs Sweep every SweepInterval until ctx is done
func (t *LoginThrottle) Start(ctx context.Context) {
	ticker := time.NewTicker(t.cfg.SweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := t.Sweep(); removed > 0 && t.logger != nil {
					t.logger.WithField("removed", removed).Debug("Swept expired login throttle entries")
				}
			}
		}
	}()
}
