package rpc

import (
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"jetlumen/go-backend/internal/platform/ratelimiter"
)

const (
	throttleEnabledEnv = "JETLUMEN_RPC_RATE_LIMIT_ENABLED"
	readRPSEnv         = "JETLUMEN_RPC_READ_RPS"
	readBurstEnv       = "JETLUMEN_RPC_READ_BURST"
	writeRPSEnv        = "JETLUMEN_RPC_WRITE_RPS"
	writeBurstEnv      = "JETLUMEN_RPC_WRITE_BURST"
	throttleIdleTTL    = 10 * time.Minute
)

// writeMethods change wallet, keystore or ledger state and share the
// stricter bucket with POST /api/transfer.
var writeMethods = map[string]struct{}{
	"wallet.connect":    {},
	"wallet.disconnect": {},
	"keystore.create":   {},
	"keystore.import":   {},
	"keystore.unlock":   {},
	"keystore.lock":     {},
	"action.submit":     {},
}

type bucketConfig struct {
	RPS   float64
	Burst int
}

type throttleConfig struct {
	Enabled bool
	Read    bucketConfig
	Write   bucketConfig
}

// throttle keeps separate per-client buckets for reads and writes. A nil
// limiter inside admits everything.
type throttle struct {
	reads  *ratelimiter.Limiter
	writes *ratelimiter.Limiter
}

func loadThrottleConfig() throttleConfig {
	cfg := throttleConfig{
		Enabled: !isTestEnv(),
		Read:    bucketConfig{RPS: positiveFloatEnv(readRPSEnv, 30), Burst: positiveIntEnv(readBurstEnv, 60)},
		Write:   bucketConfig{RPS: positiveFloatEnv(writeRPSEnv, 2), Burst: positiveIntEnv(writeBurstEnv, 5)},
	}
	if enabled, ok := parseBoolEnv(throttleEnabledEnv); ok {
		cfg.Enabled = enabled
	}
	return cfg
}

func newThrottle(cfg throttleConfig) *throttle {
	if !cfg.Enabled {
		return &throttle{}
	}
	return &throttle{
		reads:  ratelimiter.New(cfg.Read.RPS, cfg.Read.Burst, throttleIdleTTL),
		writes: ratelimiter.New(cfg.Write.RPS, cfg.Write.Burst, throttleIdleTTL),
	}
}

// admit answers 429 with Retry-After when the client's bucket is empty.
func (t *throttle) admit(w http.ResponseWriter, key string, write bool) bool {
	limiter := t.reads
	if write {
		limiter = t.writes
	}
	decision := limiter.Take(key, time.Now())
	if decision.Allowed {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(decision.RetryAfter)))
	writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
	return false
}

func retryAfterSeconds(d time.Duration) int {
	secs := math.Ceil(d.Seconds())
	switch {
	case secs < 1:
		return 1
	case secs > 3600:
		return 3600
	default:
		return int(secs)
	}
}

// callerKey buckets by the verified token, else by remote host, so rotating
// made-up tokens never buys a fresh bucket.
func (s *Server) callerKey(r *http.Request) string {
	return clientKey(r, s.verifiedToken(r))
}

func clientKey(r *http.Request, token string) string {
	if token = strings.TrimSpace(token); token != "" {
		return "token:" + token
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = strings.TrimSpace(host)
	}
	if remote == "" {
		return "ip:unknown"
	}
	return "ip:" + remote
}

func positiveIntEnv(name string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(os.Getenv(name)))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func positiveFloatEnv(name string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(name)), 64)
	if err != nil || parsed <= 0 || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
		return fallback
	}
	return parsed
}
