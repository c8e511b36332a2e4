package finance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// PriceStore keeps fetched price tables by cache key.
type PriceStore interface {
	Get(ctx context.Context, key string) (*PriceTable, bool, error)
	Set(ctx context.Context, key string, table *PriceTable, ttl time.Duration) error
}

// CacheKey identifies a fetch by window dates and the sorted, de-duplicated
// symbol set. Symbols keep their case: tables are keyed by the symbols as
// requested, so "spy" and "SPY" must not share an entry.
func CacheKey(symbols []string, window DateWindow) string {
	set := map[string]struct{}{}
	uniq := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if _, ok := set[s]; ok || s == "" {
			continue
		}
		set[s] = struct{}{}
		uniq = append(uniq, s)
	}
	sort.Strings(uniq)
	return fmt.Sprintf("prices|%s|%s|%s", window.Start.Format(dateLayout), window.End.Format(dateLayout), strings.Join(uniq, ","))
}

// CachedSource serves repeated fetches for the same window and symbol set from a store.
type CachedSource struct {
	src   PriceSource
	store PriceStore
	ttl   time.Duration
}

func NewCachedSource(src PriceSource, store PriceStore, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = defaultPriceCacheTTL
	}
	return &CachedSource{src: src, store: store, ttl: ttl}
}

func (c *CachedSource) FetchAdjustedClose(ctx context.Context, symbols []string, window DateWindow) (*PriceTable, error) {
	key := CacheKey(symbols, window)
	if table, ok, err := c.store.Get(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: read failed, fetching")
	} else if ok {
		log.Debug().Str("key", key).Msg("cache: hit")
		// the cached copy is stamped with the window of the fetch that filled it
		table.Window = window
		return table, nil
	}

	table, err := c.src.FetchAdjustedClose(ctx, symbols, window)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, key, table, c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: write failed")
	}
	return table, nil
}

// MemoryPriceStore is an in-process TTL store. Tables are copied on the way in and out.
type MemoryPriceStore struct {
	mu      sync.Mutex
	entries map[string]priceCacheEntry
	now     func() time.Time
}

func NewMemoryPriceStore() *MemoryPriceStore {
	return &MemoryPriceStore{entries: map[string]priceCacheEntry{}, now: time.Now}
}

func (m *MemoryPriceStore) Get(_ context.Context, key string) (*PriceTable, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.table.Clone(), true, nil
}

func (m *MemoryPriceStore) Set(_ context.Context, key string, table *PriceTable, ttl time.Duration) error {
	m.mu.Lock()
	now := m.now()
	m.entries[key] = priceCacheEntry{createdAt: now, expiresAt: now.Add(ttl), table: table.Clone()}
	m.mu.Unlock()
	return nil
}
