package querycache_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendenpay/portal/internal/platform/querycache"
	"github.com/lendenpay/portal/pkg/logger"
)

// fakeBackend is an in-memory Backend for tests. TTLs are recorded but not enforced.
type fakeBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet bool
	failSet bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (b *fakeBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failGet {
		return nil, false, errors.New("backend down")
	}
	value, ok := b.data[key]
	return value, ok, nil
}

func (b *fakeBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSet {
		return errors.New("backend down")
	}
	b.data[key] = value
	b.ttls[key] = ttl
	return nil
}

func (b *fakeBackend) DeleteByPrefix(ctx context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key := range b.data {
		if strings.HasPrefix(key, prefix) {
			delete(b.data, key)
		}
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New("development", io.Discard)
}

func TestCache_FetchOnceThenHit(t *testing.T) {
	backend := newFakeBackend()
	cache := querycache.New(backend, testLogger())

	var calls int32
	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte(`"fresh"`), nil
	}

	for i := 0; i < 3; i++ {
		value, err := cache.GetOrFetch(context.Background(), "payment:methods", fetch)
		require.NoError(t, err)
		assert.Equal(t, `"fresh"`, string(value))
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_ConcurrentFetchesShareOneFlight(t *testing.T) {
	backend := newFakeBackend()
	cache := querycache.New(backend, testLogger())

	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte(`42`), nil
	}

	const workers = 10
	var wg sync.WaitGroup
	results := make([][]byte, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.GetOrFetch(context.Background(), "tx:list", fetch)
		}(i)
	}

	// Allow all workers to reach the cache before the fetch resolves.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "all workers must share one upstream flight")
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, `42`, string(results[i]))
	}
}

func TestCache_FetchErrorNotCached(t *testing.T) {
	backend := newFakeBackend()
	cache := querycache.New(backend, testLogger())

	var calls int32
	fetch := func(ctx context.Context) ([]byte, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("upstream 500")
		}
		return []byte(`"ok"`), nil
	}

	_, err := cache.GetOrFetch(context.Background(), "users:list", fetch)
	require.Error(t, err)

	value, err := cache.GetOrFetch(context.Background(), "users:list", fetch)
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, string(value))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_InvalidateForcesRefetch(t *testing.T) {
	backend := newFakeBackend()
	cache := querycache.New(backend, testLogger())

	var calls int32
	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte(`"v"`), nil
	}

	ctx := context.Background()
	_, err := cache.GetOrFetch(ctx, "payment:types:m-1", fetch)
	require.NoError(t, err)
	_, err = cache.GetOrFetch(ctx, "payment:types:m-2", fetch)
	require.NoError(t, err)

	cache.Invalidate(ctx, "payment:types")

	_, err = cache.GetOrFetch(ctx, "payment:types:m-1", fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCache_BackendFailureDegradesToFetch(t *testing.T) {
	backend := newFakeBackend()
	backend.failGet = true
	backend.failSet = true
	cache := querycache.New(backend, testLogger())

	var calls int32
	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte(`"direct"`), nil
	}

	for i := 0; i < 2; i++ {
		value, err := cache.GetOrFetch(context.Background(), "agent:a-1", fetch)
		require.NoError(t, err)
		assert.Equal(t, `"direct"`, string(value))
	}

	// Without a working backend every read goes upstream, but reads still succeed.
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_TypedRoundTrip(t *testing.T) {
	backend := newFakeBackend()
	cache := querycache.New(backend, testLogger())

	type method struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	var calls int32
	fetch := func(ctx context.Context) ([]method, error) {
		atomic.AddInt32(&calls, 1)
		return []method{{ID: "m-1", Name: "BANK"}}, nil
	}

	first, err := querycache.Fetch(context.Background(), cache, "payment:methods", fetch)
	require.NoError(t, err)
	second, err := querycache.Fetch(context.Background(), cache, "payment:methods", fetch)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "BANK", second[0].Name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "payment:types:m-1", querycache.Key("payment", "types", "m-1"))
}
