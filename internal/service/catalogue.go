// Package service implements the catalogue operations behind every tool:
// name resolution through resolve.Chain, scoped uniqueness, reference and
// date validation, cascade deletes and the cached display lookups.
//
// Every method returns either a result or an error whose text is meant for
// the end user (see apperr.Text).
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/HendryAvila/foreman/internal/cache"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/resolve"
	"github.com/HendryAvila/foreman/internal/store"
)

// Pagination defaults shared by every list operation.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Options configures a Catalogue.
type Options struct {
	// CacheTTL is the lifetime of cached display lookups.
	CacheTTL time.Duration
	Logger   *slog.Logger
	// OnResolve observes every name lookup.
	OnResolve resolve.Observer
	// OnCache observes every cache lookup.
	OnCache func(name string, r cache.Result)
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// Catalogue is the application service shared by all tool handlers.
type Catalogue struct {
	store    *store.Store
	resolver *resolve.Resolver
	log      *slog.Logger

	users    *cache.TTL[string, domain.User]
	projects *cache.TTL[string, domain.Project]
	stages   *cache.TTL[string, domain.Stage]
}

// New creates a Catalogue over s.
func New(s *store.Store, opts Options) *Catalogue {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cacheOpts := []cache.Option{cache.WithClock(now)}
	if opts.OnCache != nil {
		cacheOpts = append(cacheOpts, cache.WithObserver(opts.OnCache))
	}
	return &Catalogue{
		store:    s,
		resolver: resolve.New(s, opts.OnResolve),
		log:      log,
		users:    cache.New[string, domain.User]("users", opts.CacheTTL, cacheOpts...),
		projects: cache.New[string, domain.Project]("projects", opts.CacheTTL, cacheOpts...),
		stages:   cache.New[string, domain.Stage]("stages", opts.CacheTTL, cacheOpts...),
	}
}

// Stats returns aggregate catalogue counts.
func (c *Catalogue) Stats(ctx context.Context) (*store.Stats, error) {
	return c.store.Stats(ctx)
}

// ─── Cached display lookups ──────────────────────────────────────────────────
//
// These feed rendered output only. Values may be up to one cache TTL old,
// so nothing here is used for uniqueness or reference checks.

func (c *Catalogue) user(ctx context.Context, id *string) (domain.User, bool) {
	if id == nil || *id == "" {
		return domain.User{}, false
	}
	u, err := c.users.GetOrLoad(*id, func() (domain.User, error) {
		u, err := c.store.GetUser(ctx, *id)
		if err != nil {
			return domain.User{}, err
		}
		return *u, nil
	})
	if err != nil {
		return domain.User{}, false
	}
	return u, true
}

func (c *Catalogue) userName(ctx context.Context, id *string) string {
	u, ok := c.user(ctx, id)
	if !ok {
		return ""
	}
	return u.DisplayName()
}

func (c *Catalogue) projectName(ctx context.Context, id string) string {
	p, err := c.projects.GetOrLoad(id, func() (domain.Project, error) {
		p, err := c.store.GetProject(ctx, id)
		if err != nil {
			return domain.Project{}, err
		}
		return *p, nil
	})
	if err != nil {
		return ""
	}
	return p.Name
}

func (c *Catalogue) stageName(ctx context.Context, id string) string {
	st, err := c.stages.GetOrLoad(id, func() (domain.Stage, error) {
		st, err := c.store.GetStage(ctx, id)
		if err != nil {
			return domain.Stage{}, err
		}
		return *st, nil
	})
	if err != nil {
		return ""
	}
	return st.Name
}

func (c *Catalogue) objectName(ctx context.Context, id string) string {
	o, err := c.store.GetObject(ctx, id)
	if err != nil {
		return ""
	}
	return o.Name
}

// NormalizePage applies the default and maximum limit and clamps offset.
func NormalizePage(limit, offset int) store.Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return store.Page{Limit: limit, Offset: offset}
}
