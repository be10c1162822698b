package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	shardedcache "github.com/simp-lee/cache"
	"golang.org/x/sync/singleflight"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
)

const (
	defaultTTL        = 5 * time.Minute
	defaultShardCount = 16
)

// Options configures a Service.
type Options struct {
	// TTL bounds how long an entry is served without refetching. Zero means 5 minutes.
	TTL time.Duration
	// MaxEntries caps the number of cached entries. Zero means unlimited.
	MaxEntries int
	// CleanupInterval is how often expired entries are swept. Zero disables sweeping.
	CleanupInterval time.Duration
	Logger          *slog.Logger
}

// Service caches the results of remote list and detail reads. Entries are
// addressed by keys built with Key, ListKey or DetailKey and invalidated by key
// prefix. It is shared by every view of a process and is safe for concurrent use.
type Service struct {
	store  shardedcache.CacheInterface
	flight singleflight.Group
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	epoch  uint64
	subs   map[uint64]subscription
	nextID uint64
}

type subscription struct {
	prefix string
	fn     func(prefix string)
}

// New creates a Service.
func New(opts Options) *Service {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	perShard := 0
	if opts.MaxEntries > 0 {
		perShard = (opts.MaxEntries + defaultShardCount - 1) / defaultShardCount
	}
	return &Service{
		store: shardedcache.NewCache(shardedcache.Options{
			MaxSize:           perShard,
			DefaultExpiration: ttl,
			CleanupInterval:   opts.CleanupInterval,
			ShardCount:        defaultShardCount,
		}),
		ttl:    ttl,
		logger: logger,
		subs:   make(map[uint64]subscription),
	}
}

// Close stops background sweeping and drops every entry.
func (s *Service) Close() {
	s.store.Close()
}

// Len returns the number of cached entries.
func (s *Service) Len() int {
	return s.store.Count()
}

// Lookup returns the cached value of key without fetching.
func Lookup[T any](s *Service, key string) (T, bool) {
	return shardedcache.GetTyped[T](s.store, key)
}

// GetOrFetch returns the cached value of key or calls fetch to produce it.
// Concurrent callers of the same key share one fetch. A result whose fetch
// started before an invalidation is returned to its callers but not cached.
func GetOrFetch[T any](ctx context.Context, s *Service, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := Lookup[T](s, key); ok {
		return v, nil
	}

	epoch := s.currentEpoch()
	v, err, _ := s.flight.Do(key+"#"+strconv.FormatUint(epoch, 10), func() (any, error) {
		val, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.storeIfCurrent(key, val, epoch)
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate removes every entry whose key starts with one of prefixes and
// notifies the subscribers watching an overlapping prefix. It returns the
// number of removed entries. The empty prefix removes every entry.
func (s *Service) Invalidate(prefixes ...string) int {
	s.mu.Lock()
	s.epoch++
	removed := 0
	for _, p := range prefixes {
		if p == "" {
			removed += s.store.Count()
			s.store.Clear()
			continue
		}
		removed += s.store.DeletePrefix(p)
	}
	var notify []func()
	for _, sub := range s.subs {
		for _, p := range prefixes {
			if overlaps(sub.prefix, p) {
				fn, prefix := sub.fn, p
				notify = append(notify, func() { fn(prefix) })
				break
			}
		}
	}
	s.mu.Unlock()

	s.logger.Debug("query cache invalidated", "prefixes", prefixes, "removed", removed, "subscribers", len(notify))
	for _, n := range notify {
		n()
	}
	return removed
}

// Subscribe registers fn to be called after every invalidation overlapping
// prefix. fn runs on the invalidating goroutine and must not block. The
// returned function cancels the subscription.
func (s *Service) Subscribe(prefix string, fn func(prefix string)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = subscription{prefix: prefix, fn: fn}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Service) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *Service) storeIfCurrent(key string, val any, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return
	}
	s.store.SetWithExpiration(key, val, s.ttl)
}

// overlaps reports whether an invalidation of one prefix can affect keys
// watched under the other.
func overlaps(a, b string) bool {
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

// Prefix returns the key prefix shared by every entry of entity.
func Prefix(entity string) string {
	return entity + ":"
}

// ListPrefix returns the key prefix of every list entry of entity.
func ListPrefix(entity string) string {
	return entity + ":list:"
}

// Key builds the cache key of a read of entity. params is hashed from its JSON
// form, in which map keys are sorted, so structurally equal params produce
// equal keys.
func Key(entity, kind string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", params))
	}
	return entity + ":" + kind + ":" + strconv.FormatUint(xxhash.Sum64(data), 16)
}

// ListKey is the key of one page of entity.
func ListKey(entity string, q listview.Query) string {
	return Key(entity, "list", q.Values())
}

// DetailKey is the key of a single-row read of entity. It doubles as the
// prefix that invalidates exactly that row; the trailing separator keeps id 1
// from matching id 10.
func DetailKey(entity string, id any) string {
	return entity + ":detail:" + fmt.Sprint(id) + ":"
}
