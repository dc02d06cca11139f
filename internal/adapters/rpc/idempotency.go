package rpc

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	rpcIdempotencyHeader = "X-JetLumen-Idempotency-Key"
	rpcReplayHeader      = "X-JetLumen-Idempotent-Replay"
	idempotencyTTL       = 10 * time.Minute
	idempotencyCapacity  = 256
)

// idempotentMethods are answered from cache when a client repeats its key,
// so a retried submit never reaches the ledger twice.
var idempotentMethods = map[string]struct{}{
	"action.submit": {},
}

type idempotencyLookup int

const (
	lookupMiss idempotencyLookup = iota
	lookupHit
	lookupConflict
	lookupPending
	lookupCanceled
)

type idempotencyEntry struct {
	key         string
	fingerprint string
	response    rpcResponse
	storedAt    time.Time
	// done is open while the claiming request runs and nil once settled.
	done chan struct{}
}

// idempotencyCache is an LRU bounded by capacity whose settled entries also
// expire after ttl. In-flight entries are never evicted or expired.
type idempotencyCache struct {
	ttl      time.Duration
	capacity int
	clock    func() time.Time

	mu    sync.Mutex
	order *list.List
	index map[string]*list.Element
}

func newIdempotencyCache(ttl time.Duration, capacity int) *idempotencyCache {
	return &idempotencyCache{
		ttl:      ttl,
		capacity: capacity,
		clock:    time.Now,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

// claim returns lookupMiss after reserving key for the caller, who must then
// store or abandon it. A caller arriving while the same request is still in
// flight waits for it and gets its response.
func (c *idempotencyCache) claim(ctx context.Context, key, fingerprint string) (rpcResponse, idempotencyLookup) {
	for {
		resp, outcome, wait := c.tryClaim(key, fingerprint)
		if outcome != lookupPending {
			return resp, outcome
		}
		select {
		case <-wait:
		case <-ctx.Done():
			return rpcResponse{}, lookupCanceled
		}
	}
}

func (c *idempotencyCache) tryClaim(key, fingerprint string) (rpcResponse, idempotencyLookup, <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock()
	if elem, ok := c.index[key]; ok {
		entry := elem.Value.(*idempotencyEntry)
		switch {
		case entry.done == nil && now.Sub(entry.storedAt) > c.ttl:
			c.removeLocked(elem)
		case entry.fingerprint != fingerprint:
			return rpcResponse{}, lookupConflict, nil
		case entry.done != nil:
			return rpcResponse{}, lookupPending, entry.done
		default:
			c.order.MoveToFront(elem)
			return entry.response, lookupHit, nil
		}
	}
	c.index[key] = c.order.PushFront(&idempotencyEntry{
		key:         key,
		fingerprint: fingerprint,
		storedAt:    now,
		done:        make(chan struct{}),
	})
	c.evictLocked()
	return rpcResponse{}, lookupMiss, nil
}

// store settles key with resp and wakes anyone waiting on it.
func (c *idempotencyCache) store(key, fingerprint string, resp rpcResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.index[key]; ok {
		entry := elem.Value.(*idempotencyEntry)
		if entry.fingerprint == fingerprint {
			entry.response = resp
			entry.storedAt = c.clock()
			settle(entry)
			c.order.MoveToFront(elem)
			c.evictLocked()
			return
		}
		c.removeLocked(elem)
	}
	c.index[key] = c.order.PushFront(&idempotencyEntry{
		key:         key,
		fingerprint: fingerprint,
		response:    resp,
		storedAt:    c.clock(),
	})
	c.evictLocked()
}

// abandon drops an in-flight claim so a waiting retry can take it over.
func (c *idempotencyCache) abandon(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.index[key]; ok && elem.Value.(*idempotencyEntry).done != nil {
		c.removeLocked(elem)
	}
}

func (c *idempotencyCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *idempotencyCache) evictLocked() {
	for elem := c.order.Back(); elem != nil && c.order.Len() > c.capacity; {
		prev := elem.Prev()
		if elem.Value.(*idempotencyEntry).done == nil {
			c.removeLocked(elem)
		}
		elem = prev
	}
}

func (c *idempotencyCache) removeLocked(elem *list.Element) {
	entry := c.order.Remove(elem).(*idempotencyEntry)
	delete(c.index, entry.key)
	settle(entry)
}

func settle(entry *idempotencyEntry) {
	if entry.done != nil {
		close(entry.done)
		entry.done = nil
	}
}

// idempotencyKey scopes a client key to the caller's token; a blank key
// opts the request out of caching.
func idempotencyKey(raw, authToken string) string {
	key := strings.TrimSpace(raw)
	if key == "" {
		return ""
	}
	return authToken + "|" + key
}

// requestFingerprint ignores the JSON-RPC id so a retry with a new id still matches.
func requestFingerprint(req rpcRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Method))
	h.Write([]byte{0})
	h.Write(req.Params)
	h.Write([]byte{0})
	if req.APIVersion != nil {
		h.Write([]byte(strconv.Itoa(*req.APIVersion)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
