package kernel

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"yasl/nlp/types"
)

const (
	DefaultCacheExpiration = 10 * time.Minute
	DefaultCacheSize       = 100000
)

// Cached memoizes kernel values by example ID pair. It holds at most
// MaxEntries values (DefaultCacheSize when zero); storing into a full
// cache flushes it first. Enriched examples built during decoding get
// fresh IDs, so their pairs are only reused within one decode.
type Cached struct {
	Kernel     Kernel
	MaxEntries int

	once  sync.Once
	mu    sync.Mutex
	cache *cache.Cache
}

var _ Kernel = &Cached{}

func NewCached(k Kernel) *Cached {
	return &Cached{Kernel: k, MaxEntries: DefaultCacheSize}
}

func NewCachedSize(k Kernel, size int) *Cached {
	return &Cached{Kernel: k, MaxEntries: size}
}

func (k *Cached) capacity() int {
	if k.MaxEntries <= 0 {
		return DefaultCacheSize
	}
	return k.MaxEntries
}

func (k *Cached) init() {
	k.once.Do(func() {
		k.cache = cache.New(DefaultCacheExpiration, 2*DefaultCacheExpiration)
	})
}

func pairKey(a, b uint64) string {
	if b < a {
		a, b = b, a
	}
	return strconv.FormatUint(a, 36) + ":" + strconv.FormatUint(b, 36)
}

func (k *Cached) Compute(a, b *types.Example) float64 {
	k.init()
	key := pairKey(a.ID, b.ID)
	if val, found := k.cache.Get(key); found {
		return val.(float64)
	}
	val := k.Kernel.Compute(a, b)
	k.mu.Lock()
	if k.cache.ItemCount() >= k.capacity() {
		k.cache.Flush()
	}
	k.cache.SetDefault(key, val)
	k.mu.Unlock()
	return val
}

func (k *Cached) Len() int {
	k.init()
	return k.cache.ItemCount()
}

func (k *Cached) Flush() {
	k.init()
	k.cache.Flush()
}

func (k *Cached) String() string {
	return "cached(" + k.Kernel.String() + ")"
}
