// Package security guards the admin configuration surface: single-use
// anti-forgery tokens and a sliding-window rate limit, both backed by an
// injected SessionStore so nothing here touches a real session backend.
package security

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// TokenLifetime is how long an issued anti-forgery token stays valid.
	TokenLifetime = 1800 * time.Second

	// DefaultRateLimitMax / DefaultRateLimitWindow bound configuration
	// submissions per client identifier.
	DefaultRateLimitMax    = 10
	DefaultRateLimitWindow = 300 * time.Second
)

// TokenManager issues and validates single-use, time-limited anti-forgery
// tokens keyed by session identifier.
type TokenManager struct {
	store    SessionStore
	lifetime time.Duration
}

func NewTokenManager(store SessionStore, lifetime time.Duration) *TokenManager {
	if lifetime <= 0 {
		lifetime = TokenLifetime
	}
	return &TokenManager{store: store, lifetime: lifetime}
}

// Generate creates a fresh token for the session, replacing any previous
// one.
func (m *TokenManager) Generate(ctx context.Context, sessionID string) (string, error) {
	token := RandomString(64)
	if err := m.store.Set(ctx, tokenKey(sessionID), token, m.lifetime); err != nil {
		return "", err
	}
	return token, nil
}

// Validate compares in constant time and invalidates the stored token
// after one successful use. Expired or missing tokens validate false.
func (m *TokenManager) Validate(ctx context.Context, sessionID, token string) bool {
	stored, err := m.store.Get(ctx, tokenKey(sessionID))
	if err != nil || stored == "" || token == "" {
		return false
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(token)) != 1 {
		return false
	}

	_ = m.store.Delete(ctx, tokenKey(sessionID))
	return true
}

// RateLimiter implements a sliding window over submission timestamps per
// client identifier.
type RateLimiter struct {
	store  SessionStore
	max    int
	window time.Duration
}

func NewRateLimiter(store SessionStore, max int, window time.Duration) *RateLimiter {
	if max <= 0 {
		max = DefaultRateLimitMax
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &RateLimiter{store: store, max: max, window: window}
}

// Allow records an attempt and reports whether the identifier is still
// within its window.
func (r *RateLimiter) Allow(ctx context.Context, identifier string) bool {
	key := "rate_limit:" + HashData(identifier, "")
	now := time.Now()

	var attempts []int64
	if raw, err := r.store.Get(ctx, key); err == nil && raw != "" {
		_ = json.Unmarshal([]byte(raw), &attempts)
	}

	cutoff := now.Add(-r.window).Unix()
	kept := attempts[:0]
	for _, ts := range attempts {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= r.max {
		return false
	}

	kept = append(kept, now.Unix())
	if raw, err := json.Marshal(kept); err == nil {
		_ = r.store.Set(ctx, key, string(raw), r.window)
	}
	return true
}

// RandomString returns length hex characters from a CSPRNG.
func RandomString(length int) string {
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		logrus.WithError(err).Error("random source failure")
	}
	return hex.EncodeToString(buf)[:length]
}

// HashData hashes data with an optional salt.
func HashData(data, salt string) string {
	sum := sha256.Sum256([]byte(data + salt))
	return hex.EncodeToString(sum[:])
}

// LogSecurityEvent writes a structured security log entry for operator
// review. Context fields typically carry client address and user agent.
func LogSecurityEvent(event string, fields logrus.Fields) {
	logrus.WithFields(fields).WithField("security_event", event).Warn("security event")
}

func tokenKey(sessionID string) string {
	return "csrf_token:" + sessionID
}
