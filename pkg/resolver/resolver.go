package resolver

import (
	"context"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"hostspin/pkg/hosts"
	"hostspin/pkg/storage"
)

// DefaultCacheSize is used when NewResolver is given a size <= 0.
const DefaultCacheSize = 1 << 12

// Resolver resolves domains through the hosts table, with an LRU cache of
// domain -> address that is dropped whenever the file changes.
type Resolver struct {
	log     *slog.Logger
	table   *hosts.Table
	journal storage.Journal

	mu    sync.Mutex
	stamp hosts.Stamp
	gen   uint64 // bumped on every purge; fills from an older gen are dropped
	cache *lru.Cache[string, string]
}

// NewResolver creates a Resolver over table. journal may be nil, in which
// case updates are not recorded.
func NewResolver(log *slog.Logger, table *hosts.Table, journal storage.Journal, size int) (*Resolver, error) {
	if log == nil {
		log = slog.Default()
	}

	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating resolver cache")
	}

	return &Resolver{
		log:     log.With("module", "resolver"),
		table:   table,
		journal: journal,
		cache:   cache,
	}, nil
}

// ResolveDomain looks up the pinned address for domain
func (r *Resolver) ResolveDomain(ctx context.Context, domain string) (string, error) {
	if domain == "" {
		return "", errors.New("domain name cannot be empty")
	}

	gen, err := r.refresh()
	if err != nil {
		return "", err
	}

	// Check cache first
	if ip, ok := r.cache.Get(domain); ok {
		r.log.Debug("cache hit", "domain", domain, "ip", ip)
		return ip, nil
	}

	r.log.Debug("cache miss", "domain", domain)
	ip, err := r.table.Lookup(ctx, domain)
	if err != nil {
		return "", err
	}

	r.fill(gen, domain, ip)
	return ip, nil
}

// GetMapping retrieves the current address and existence status for domain.
func (r *Resolver) GetMapping(ctx context.Context, domain string) (string, bool, error) {
	ip, err := r.ResolveDomain(ctx, domain)
	if errors.Is(err, hosts.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return ip, true, nil
}

// UpdateMapping pins domain to ip in the table and records the outcome.
func (r *Resolver) UpdateMapping(ctx context.Context, domain, ip string) (hosts.Outcome, error) {
	out, err := r.table.Update(ctx, domain, ip)
	if err != nil {
		return out, err
	}

	if out.Changed() {
		r.invalidate()
	}

	if r.journal != nil {
		entry := storage.Entry{
			Domain:   out.Domain,
			Target:   out.Target,
			Previous: out.Previous,
			Kind:     out.Kind.String(),
			Message:  out.Message,
		}
		if err := r.journal.Record(ctx, entry); err != nil {
			// The file is already written; losing the journal entry is not
			// worth failing the update for.
			r.log.Warn("unable to record update", "domain", domain, "error", err)
		}
	}

	return out, nil
}

// ResolveURL rewrites url with the pinned address of its domain.
func (r *Resolver) ResolveURL(ctx context.Context, url string) (string, error) {
	host, err := hosts.URLHost(url)
	if err != nil {
		return "", err
	}

	ip, err := r.ResolveDomain(ctx, host)
	if err != nil {
		return "", err
	}

	return r.table.Substitute(url, ip)
}

// History returns the journaled updates for domain, newest first.
func (r *Resolver) History(ctx context.Context, domain string, limit int) ([]storage.Entry, error) {
	if r.journal == nil {
		return nil, ErrNoJournal
	}
	return r.journal.History(ctx, domain, limit)
}

// ErrNoJournal is returned by History when no journal is configured.
var ErrNoJournal = errors.New("no history journal configured")

// refresh drops the cache if the file changed since it was filled and
// returns the cache generation a later fill must match.
func (r *Resolver) refresh() (uint64, error) {
	stamp, err := r.table.File().Stamp()
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !stamp.Equal(r.stamp) {
		if r.cache.Len() > 0 {
			r.log.Debug("hosts file changed, dropping cache")
		}
		r.purgeLocked()
		r.stamp = stamp
	}

	return r.gen, nil
}

// fill caches ip unless the cache was purged after gen was taken, in which
// case ip may predate the purge.
func (r *Resolver) fill(gen uint64, domain, ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen {
		r.log.Debug("discarding stale lookup", "domain", domain, "ip", ip)
		return
	}
	r.cache.Add(domain, ip)
}

func (r *Resolver) invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.purgeLocked()
	r.stamp = hosts.Stamp{}
}

func (r *Resolver) purgeLocked() {
	r.cache.Purge()
	r.gen++
}
