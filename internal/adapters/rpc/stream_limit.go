package rpc

import "sync"

const (
	rpcStreamMaxGlobalEnv    = "JETLUMEN_RPC_STREAM_MAX_GLOBAL"
	rpcStreamMaxPerClientEnv = "JETLUMEN_RPC_STREAM_MAX_PER_CLIENT"
)

type rpcStreamLimitConfig struct {
	MaxGlobal    int
	MaxPerClient int
}

func loadRPCStreamLimitConfig() rpcStreamLimitConfig {
	return rpcStreamLimitConfig{
		MaxGlobal:    positiveIntEnv(rpcStreamMaxGlobalEnv, 32),
		MaxPerClient: positiveIntEnv(rpcStreamMaxPerClientEnv, 4),
	}
}

// rpcStreamLimiter counts open SSE subscriptions. A dApp tab normally holds
// one, so the per-client cap mostly catches reconnect loops.
type rpcStreamLimiter struct {
	cfg rpcStreamLimitConfig

	mu     sync.Mutex
	total  int
	perKey map[string]int
}

func newRPCStreamLimiter(cfg rpcStreamLimitConfig) *rpcStreamLimiter {
	return &rpcStreamLimiter{cfg: cfg, perKey: make(map[string]int)}
}

// acquire returns a release func that is safe to call more than once.
func (l *rpcStreamLimiter) acquire(key string) (release func(), ok bool) {
	if l == nil {
		return func() {}, true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.total >= l.cfg.MaxGlobal || l.perKey[key] >= l.cfg.MaxPerClient {
		return nil, false
	}
	l.total++
	l.perKey[key]++
	var once sync.Once
	return func() { once.Do(func() { l.drop(key) }) }, true
}

func (l *rpcStreamLimiter) drop(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total--
	if l.perKey[key]--; l.perKey[key] <= 0 {
		delete(l.perKey, key)
	}
}
