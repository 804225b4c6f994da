package secrets

import (
	"context"
	"sync"
	"time"
)

type secret struct {
	value     string
	timeAdded time.Time
}

type fetchFunc func(ctx context.Context, name string) (secret, error)

// secretCache keeps at most maxEntries secrets, each for ttl. When full, the
// oldest entry is evicted.
type secretCache struct {
	mu         sync.Mutex
	secrets    map[string]secret
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

func newSecretCache(options *CloudSecretsCacheOptions) *secretCache {
	maxEntries := options.MaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultCacheOptions.MaxEntries
	}
	return &secretCache{
		secrets:    make(map[string]secret),
		maxEntries: maxEntries,
		ttl:        options.TTL,
		now:        time.Now,
	}
}

func (cache *secretCache) get(ctx context.Context, name string, fetch fetchFunc) (secret, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	s, ok := cache.secrets[name]
	if ok && cache.now().Sub(s.timeAdded) < cache.ttl {
		return s, nil
	}
	fetched, err := fetch(ctx, name)
	if err != nil {
		return secret{}, err
	}
	fetched.timeAdded = cache.now()
	cache.secrets[name] = fetched
	for len(cache.secrets) > cache.maxEntries {
		cache.evict()
	}
	return fetched, nil
}

func (cache *secretCache) evict() {
	var oldestName string
	var oldest time.Time
	first := true
	for name, s := range cache.secrets {
		if first || s.timeAdded.Before(oldest) {
			oldestName = name
			oldest = s.timeAdded
			first = false
		}
	}
	delete(cache.secrets, oldestName)
}
