package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"ratehub/internal/database"
	"ratehub/internal/metrics"
)

// DefaultTTL is how long a provider response stays fresh. Past this window a
// lookup is a miss and the entry is discarded.
const DefaultTTL = 24 * time.Hour

// Status reports quota usage after a put.
type Status struct {
	Used   int  `json:"used"`
	Limit  int  `json:"limit"`
	Warned bool `json:"warned" description:"true exactly once per window, when usage crosses the threshold"`
}

// Message is the caller-facing notice for a crossed threshold.
func (s Status) Message() string {
	return fmt.Sprintf("provider quota running low: %d of %d monthly calls used", s.Used, s.Limit)
}

type GovernorFuncOption func(*Governor)

// Governor is the TTL and quota aware response cache in front of the live
// rate provider. It never blocks or fails: a store error degrades to a miss.
type Governor struct {
	store         database.KeyValueStore
	ttl           time.Duration
	limit         int
	warnThreshold int
	now           func() time.Time
}

func NewGovernor(store database.KeyValueStore, opts ...GovernorFuncOption) *Governor {
	g := &Governor{
		store:         store,
		ttl:           DefaultTTL,
		limit:         50,
		warnThreshold: 40,
		now:           time.Now,
	}
	for _, fn := range opts {
		fn(g)
	}
	return g
}

func WithTTL(ttl time.Duration) GovernorFuncOption {
	return func(g *Governor) {
		g.ttl = ttl
	}
}

func WithQuota(limit, warnThreshold int) GovernorFuncOption {
	return func(g *Governor) {
		g.limit = limit
		g.warnThreshold = warnThreshold
	}
}

func WithClock(now func() time.Time) GovernorFuncOption {
	return func(g *Governor) {
		g.now = now
	}
}

// GenerateUUIDFromString derives a stable UUID key from a namespace and the
// full serialized request, so distinct semantic requests never collide.
func GenerateUUIDFromString(namespace, key string) string {
	hash := md5.Sum([]byte(namespace))
	namespaceUUID := uuid.Must(uuid.FromBytes(hash[:]))
	generatedUUID := uuid.NewMD5(namespaceUUID, []byte(key))
	return generatedUUID.String()
}

// CacheKey serializes every field of params (sorted map keys, full struct)
// under the endpoint namespace.
func CacheKey(endpoint string, params any) string {
	serialized, err := json.Marshal(params)
	if err != nil {
		serialized = []byte(fmt.Sprintf("%+v", params))
	}
	return GenerateUUIDFromString(endpoint, string(serialized))
}

// Get returns a fresh cached payload or a miss.
func (g *Governor) Get(ctx context.Context, endpoint string, params any) ([]byte, bool) {
	key := CacheKey(endpoint, params)
	payload, ok := g.store.Get(ctx, key)
	if !ok {
		metrics.CacheMisses.WithLabelValues(endpoint).Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues(endpoint).Inc()
	return payload, true
}

// Put stores a successful provider response and charges one call against the
// monthly quota. The warning fires exactly once per month window; the sticky
// flag lives in the store so the choice survives restarts.
func (g *Governor) Put(ctx context.Context, endpoint string, params any, payload []byte) Status {
	key := CacheKey(endpoint, params)
	if err := g.store.Set(ctx, key, payload, g.ttl); err != nil {
		log.Errorf("cache put degraded to no-op for %s: %v", endpoint, err)
	}

	// Counter keys outlive cache entries so TTL eviction never undercounts.
	used, err := g.store.IncrBy(ctx, g.quotaKey(), 1, 40*24*time.Hour)
	if err != nil {
		log.Errorf("quota increment failed, usage may undercount: %v", err)
		return Status{Limit: g.limit}
	}
	metrics.QuotaUsed.Set(float64(used))

	status := Status{Used: int(used), Limit: g.limit}
	if int(used) >= g.warnThreshold && g.markWarned(ctx) {
		status.Warned = true
		log.Warn(status.Message())
	}
	return status
}

// Status reports current usage without charging quota.
func (g *Governor) Status(ctx context.Context) Status {
	used, err := g.store.IncrBy(ctx, g.quotaKey(), 0, 0)
	if err != nil {
		return Status{Limit: g.limit}
	}
	return Status{Used: int(used), Limit: g.limit}
}

func (g *Governor) quotaKey() string {
	return "quota:" + g.now().UTC().Format("2006-01")
}

// markWarned flips the per-window sticky flag; returns true only on the flip.
// The flag is an atomic counter so concurrent puts crossing the threshold
// cannot both claim the warning.
func (g *Governor) markWarned(ctx context.Context) bool {
	flagKey := g.quotaKey() + ":warned"
	flips, err := g.store.IncrBy(ctx, flagKey, 1, 40*24*time.Hour)
	if err != nil {
		log.Errorf("failed to persist quota warning flag: %v", err)
		return false
	}
	return flips == 1
}
