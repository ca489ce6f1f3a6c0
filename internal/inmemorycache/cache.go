package inmemorycache

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"ulascansenturk/weather-glasses/internal/weather"
)

type cacheEntry struct {
	data       []byte
	expiration time.Time
}

type Cache interface {
	Get(query string) ([]weather.LocationCandidate, bool, error)
	Set(query string, candidates []weather.LocationCandidate, ttl time.Duration) error
}

// InMemoryCache keeps geocoding results per normalized query string. Entries are stored
// encoded so callers never share slices with the cache.
type InMemoryCache struct {
	cache           map[string]cacheEntry
	mutex           sync.Mutex
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

func NewInMemoryCacheProvider(cleanupInterval time.Duration) *InMemoryCache {
	provider := &InMemoryCache{
		cache:           make(map[string]cacheEntry),
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
	}

	go provider.startCleanup()

	return provider
}

func normalizeKey(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

func (m *InMemoryCache) Get(query string) ([]weather.LocationCandidate, bool, error) {
	key := normalizeKey(query)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry, exists := m.cache[key]
	if !exists {
		return nil, false, nil
	}

	if time.Now().After(entry.expiration) {
		delete(m.cache, key)
		return nil, false, nil
	}

	var candidates []weather.LocationCandidate
	if err := json.Unmarshal(entry.data, &candidates); err != nil {
		return nil, false, err
	}

	return candidates, true, nil
}

func (m *InMemoryCache) Set(query string, candidates []weather.LocationCandidate, ttl time.Duration) error {
	jsonData, err := json.Marshal(candidates)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.cache[normalizeKey(query)] = cacheEntry{
		data:       jsonData,
		expiration: time.Now().Add(ttl),
	}

	return nil
}

func (m *InMemoryCache) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.cache)
}

// Close stops the cleanup goroutine. Get and Set keep working.
func (m *InMemoryCache) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *InMemoryCache) startCleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mutex.Lock()
			now := time.Now()
			for k, v := range m.cache {
				if now.After(v.expiration) {
					delete(m.cache, k)
				}
			}
			m.mutex.Unlock()
		}
	}
}
