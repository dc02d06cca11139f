package rpc

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	rpcTokenEnv        = "JETLUMEN_RPC_TOKEN"
	rpcTokenFileEnv    = "JETLUMEN_RPC_TOKEN_FILE"
	rpcTokenRotateEnv  = "JETLUMEN_RPC_TOKEN_ROTATE_ON_START"
	requireRPCTokenEnv = "JETLUMEN_REQUIRE_RPC_TOKEN"
	allowNullOriginEnv = "JETLUMEN_ALLOW_NULL_ORIGIN"
	envNameEnv         = "JETLUMEN_ENV"
	rpcTokenHeader     = "X-JetLumen-RPC-Token"
	rpcTokenPrefix     = "jlr_"
	rpcTokenBytes      = 32
)

var corsAllowHeaders = strings.Join([]string{
	"Content-Type",
	"Accept",
	"Authorization",
	rpcTokenHeader,
	rpcIdempotencyHeader,
}, ", ")

// deployment is the JETLUMEN_ENV class the auth and throttle defaults key off.
type deployment int

const (
	deployProduction deployment = iota
	deployDevelopment
	deployTest
)

func currentDeployment() deployment {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envNameEnv))) {
	case "test", "testing":
		return deployTest
	case "dev", "development", "local":
		return deployDevelopment
	default:
		return deployProduction
	}
}

func isTestEnv() bool {
	return currentDeployment() == deployTest
}

// requiresRPCToken fails closed in production: only non-production
// deployments may switch the token requirement off.
func requiresRPCToken() bool {
	prod := currentDeployment() == deployProduction
	if v, ok := parseBoolEnv(requireRPCTokenEnv); ok {
		return v || prod
	}
	return prod
}

// isAllowedOrigin admits loopback origins only; the dApp is served locally.
func isAllowedOrigin(raw string) bool {
	if raw == "null" {
		allowNull, _ := parseBoolEnv(allowNullOriginEnv)
		return allowNull
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}

func parseBoolEnv(name string) (value bool, ok bool) {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// resolveRPCToken returns the configured token, or mints one when the token
// is "auto" or rotation is requested. Minted tokens go to
// JETLUMEN_RPC_TOKEN_FILE when set so the dApp can pick them up.
func resolveRPCToken() (string, error) {
	token := strings.TrimSpace(os.Getenv(rpcTokenEnv))
	rotate, _ := parseBoolEnv(rpcTokenRotateEnv)
	if !rotate && !strings.EqualFold(token, "auto") {
		return token, nil
	}
	buf := make([]byte, rpcTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("mint rpc token: %w", err)
	}
	minted := rpcTokenPrefix + hex.EncodeToString(buf)
	if path := strings.TrimSpace(os.Getenv(rpcTokenFileEnv)); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return "", fmt.Errorf("persist rpc token: %w", err)
		}
		if err := os.WriteFile(path, []byte(minted), 0o600); err != nil {
			return "", fmt.Errorf("persist rpc token: %w", err)
		}
	}
	return minted, nil
}

// corsMiddleware rejects foreign origins and answers preflight requests.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			if !isAllowedOrigin(origin) {
				http.Error(w, "origin is not allowed", http.StatusForbidden)
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rpcToken == "" && !s.requireRPC {
			next.ServeHTTP(w, r)
			return
		}
		if s.verifiedToken(r) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// verifiedToken returns the presented token only when it matches the
// configured one. An empty configured token verifies nothing.
func (s *Server) verifiedToken(r *http.Request) string {
	if s.rpcToken == "" {
		return ""
	}
	presented := s.extractRPCToken(r)
	if subtle.ConstantTimeCompare([]byte(presented), []byte(s.rpcToken)) != 1 {
		return ""
	}
	return presented
}

// extractRPCToken prefers the JetLumen header over a bearer Authorization.
func (s *Server) extractRPCToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(rpcTokenHeader)); token != "" {
		return token
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, token, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}
