package utils

import (
	"context"
	"sync"
	"time"
)

const revokedKeyPrefix = "tracker:revoked:"

var (
	revoked   = map[string]time.Time{}
	revokedMu sync.Mutex
)

// RevokeToken marks a token id as logged out until its natural expiry.
func RevokeToken(jti string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err == nil {
			return
		}
	}
	revokedMu.Lock()
	defer revokedMu.Unlock()
	now := time.Now()
	for k, exp := range revoked {
		if now.After(exp) {
			delete(revoked, k)
		}
	}
	revoked[jti] = expiresAt
}

// IsTokenRevoked reports whether jti was revoked before expiring.
func IsTokenRevoked(jti string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rc.Exists(ctx, revokedKeyPrefix+jti).Result(); err == nil && n > 0 {
			return true
		}
	}
	revokedMu.Lock()
	defer revokedMu.Unlock()
	exp, ok := revoked[jti]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(revoked, jti)
		return false
	}
	return true
}
