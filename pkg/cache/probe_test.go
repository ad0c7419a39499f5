package cache_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/dom/pkg/adapters/memory"
	"github.com/aretw0/dom/pkg/cache"
	"github.com/aretw0/dom/pkg/core"
	"github.com/aretw0/dom/pkg/typed"
	"github.com/stretchr/testify/require"
)

// probe counts the round-trips and read requests reaching the store.
type probe struct {
	next core.Transport

	mu    sync.Mutex
	sends int
	reads []core.ReadRequest
}

func (p *probe) Send(ctx context.Context, reqs []core.Request) ([]core.Response, error) {
	p.mu.Lock()
	p.sends++
	for _, r := range reqs {
		if read, ok := r.(core.ReadRequest); ok {
			p.reads = append(p.reads, read)
		}
	}
	p.mu.Unlock()
	return p.next.Send(ctx, reqs)
}

func (p *probe) Sends() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sends
}

func (p *probe) Reads() []core.ReadRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]core.ReadRequest(nil), p.reads...)
}

type env struct {
	store *memory.Store
	probe *probe
	cache *cache.Cache
}

func newEnv(t *testing.T, opts ...cache.Option) env {
	t.Helper()
	store := memory.New()
	p := &probe{next: store}
	c, err := cache.New(typed.NewHelper(p), opts...)
	require.NoError(t, err)
	return env{store: store, probe: p, cache: c}
}
