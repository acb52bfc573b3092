package plansfeatures

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

const DefaultCacheTTL = 30 * time.Second

// Resolver implementa capabilities.Resolver contra plans-features, con una
// caché corta por usuario para no pegarle al upstream en cada request.
type Resolver struct {
	client   *Client
	allowAll bool
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	caps    map[string]bool
	expires time.Time
}

type ResolverOptions struct {
	// AllowAll devuelve true sin llamar a upstream (dev).
	AllowAll bool
	// CacheTTL <= 0 usa DefaultCacheTTL.
	CacheTTL time.Duration
}

func NewResolver(client *Client, opts ResolverOptions) *Resolver {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Resolver{
		client:   client,
		allowAll: opts.AllowAll,
		ttl:      ttl,
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
	}
}

// Has responde si userID tiene la capability.
func (r *Resolver) Has(ctx context.Context, userID string, capability string) (bool, error) {
	capability = strings.TrimSpace(capability)
	if capability == "" {
		return false, errors.New("capability required")
	}
	caps, err := r.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	return caps["*"] || caps[capability], nil
}

// Resolve devuelve el mapa completo de capabilities de userID.
func (r *Resolver) Resolve(ctx context.Context, userID string) (map[string]bool, error) {
	if r == nil {
		return nil, ErrPlansNotConfigured
	}
	if r.allowAll {
		return map[string]bool{"*": true}, nil
	}
	if r.client == nil || !r.client.IsConfigured() {
		return nil, ErrPlansNotConfigured
	}

	now := r.now()
	r.mu.Lock()
	if e, ok := r.cache[userID]; ok && now.Before(e.expires) {
		r.mu.Unlock()
		return e.caps, nil
	}
	r.mu.Unlock()

	resp, err := r.client.GetCapabilities(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[userID] = cacheEntry{caps: resp.Capabilities, expires: now.Add(r.ttl)}
	r.mu.Unlock()

	return resp.Capabilities, nil
}
