package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"trivialan/internal/logger"
)

// RateLimiter throttles connection attempts per client IP.
type RateLimiter struct {
	requests map[string]*clientRate
	mu       sync.Mutex

	maxPerSecond    int
	banDuration     time.Duration
	cleanupInterval time.Duration
}

type clientRate struct {
	count       int
	lastSecond  time.Time
	bannedUntil time.Time
}

// NewRateLimiter creates a limiter allowing maxPerSecond connection attempts
// per IP. Exceeding the limit bans the IP for banDuration.
func NewRateLimiter(maxPerSecond int, banDuration time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests:        make(map[string]*clientRate),
		maxPerSecond:    maxPerSecond,
		banDuration:     banDuration,
		cleanupInterval: 5 * time.Minute,
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether the IP may open another connection now.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rate, exists := rl.requests[ip]
	if !exists {
		rl.requests[ip] = &clientRate{count: 1, lastSecond: now}
		return true
	}

	if now.Before(rate.bannedUntil) {
		return false
	}

	if now.Sub(rate.lastSecond) >= time.Second {
		rate.count = 0
		rate.lastSecond = now
	}
	rate.count++

	if rate.count > rl.maxPerSecond {
		rate.bannedUntil = now.Add(rl.banDuration)
		logger.LogInfo("IP %s temporarily banned for connecting too fast", ip)
		return false
	}
	return true
}

// IsBanned reports whether the IP is currently banned.
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rate, exists := rl.requests[ip]
	return exists && time.Now().Before(rate.bannedUntil)
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, rate := range rl.requests {
			if now.Sub(rate.lastSecond) > 10*time.Minute && now.After(rate.bannedUntil) {
				delete(rl.requests, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// OriginChecker validates the Origin header of websocket upgrades.
type OriginChecker struct {
	allowed  map[string]bool
	allowAll bool
}

// NewOriginChecker builds a checker from the configured origin list. A "*"
// entry allows everything.
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]bool)}
	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowed[strings.ToLower(origin)] = true
	}
	return oc
}

// Check reports whether the request's origin is acceptable. Requests without
// an Origin header pass: same-origin browsers and non-browser clients omit it.
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return oc.allowed[strings.ToLower(origin)]
}

// MessageRateLimiter throttles inbound messages per connected client.
type MessageRateLimiter struct {
	limits map[string]*messageRate
	mu     sync.Mutex

	maxPerSecond int
}

type messageRate struct {
	count     int
	lastReset time.Time
	warnings  int
}

// NewMessageRateLimiter allows maxPerSecond messages per connection.
func NewMessageRateLimiter(maxPerSecond int) *MessageRateLimiter {
	return &MessageRateLimiter{
		limits:       make(map[string]*messageRate),
		maxPerSecond: maxPerSecond,
	}
}

// Allow reports whether the client may send another message now.
func (ml *MessageRateLimiter) Allow(clientID string) bool {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := time.Now()
	rate, exists := ml.limits[clientID]
	if !exists {
		ml.limits[clientID] = &messageRate{count: 1, lastReset: now}
		return true
	}

	if now.Sub(rate.lastReset) >= time.Second {
		rate.count = 1
		rate.lastReset = now
		return true
	}

	rate.count++
	if rate.count > ml.maxPerSecond {
		rate.warnings++
		return false
	}
	return true
}

// Warnings returns how often the client exceeded the limit.
func (ml *MessageRateLimiter) Warnings(clientID string) int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if rate, exists := ml.limits[clientID]; exists {
		return rate.warnings
	}
	return 0
}

// Remove drops the client's record after disconnect.
func (ml *MessageRateLimiter) Remove(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.limits, clientID)
}

// GetClientIP resolves the real client address, honoring proxy headers.
func GetClientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
