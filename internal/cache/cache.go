// Package cache implements the in-process TTL cache: a fingerprint ->
// (value, expires_at) mapping guarded by a single mutex. It deliberately
// does not use Redis — see SPEC_FULL.md's §4.4 expansion for why the
// teacher's Redis dependency lives elsewhere (notify cooldown ledger).
package cache

import (
	"context"
	"crypto/md5" //nolint:gosec // fingerprinting only, not a security boundary
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/iancoleman/strcase"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL-bounded key/value store. Zero value is not usable; use New.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration
}

func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
	}
}

// Get returns the cached value and true on a live hit. An expired entry is
// deleted and reported as a miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *Cache) getLocked(key string) (any, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with ttl (or the cache's default if ttl <= 0).
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// ClearExpired sweeps every entry past its expiry. Intended for an
// occasional maintenance call, not the hot path.
func (c *Cache) ClearExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	removed := 0
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// GetOrSet returns the cached value if present and live; otherwise it calls
// factory, stores the result, and returns it. factory runs outside the
// cache's lock so a slow fill never blocks unrelated reads/writes.
func (c *Cache) GetOrSet(ctx context.Context, key string, ttl time.Duration, factory func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	v, ok := c.getLocked(key)
	c.mu.Unlock()
	if ok {
		return v, nil
	}

	v, err := factory(ctx)
	if err != nil {
		return nil, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

// Fingerprint canonicalizes params (sorted, snake_case keys) and returns a
// 12-hex-char MD5-derived digest. Bit-exact only within a single process's
// lifetime — cross-process identity is not a goal.
func Fingerprint(params map[string]any) string {
	canonical := make(map[string]any, len(params))
	for k, v := range params {
		canonical[strcase.ToSnake(k)] = v
	}

	keys := make([]string, 0, len(canonical))
	for k := range canonical {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]keyValue, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, keyValue{Key: k, Value: canonical[k]})
	}

	raw, _ := json.Marshal(ordered)
	sum := md5.Sum(raw) //nolint:gosec
	return hex.EncodeToString(sum[:])[:12]
}

type keyValue struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// SearchKey builds the "search:<hex12>" fingerprint for a catalog query.
func SearchKey(params map[string]any) string {
	return "search:" + Fingerprint(params)
}

// RecommendationKey builds the "rec:{intent}:{session}:<hex12>" fingerprint
// for an orchestrator/mode-agent output. Note the fingerprint intentionally
// only covers {intent, session, query} — see DESIGN.md's Open Question #2.
func RecommendationKey(intent, sessionID string, params map[string]any) string {
	scoped := make(map[string]any, len(params)+2)
	for k, v := range params {
		scoped[k] = v
	}
	scoped["intent"] = intent
	scoped["session"] = sessionID
	return "rec:" + intent + ":" + sessionID + ":" + Fingerprint(scoped)
}
