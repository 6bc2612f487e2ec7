package resolver

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// resolution is a cached oracle answer for one candidate.
type resolution struct {
	fqcn string
	ok   bool
}

// Resolver memoizes oracle lookups for the lifetime of a scan.
//
// Design decision: We keep a per-run cache with singleflight in front of the
// oracle because:
//  1. An oracle call forks a process; the same module appears in many tasks
//  2. Parallel file scanning must not issue duplicate calls for one name
//  3. A broken oracle must be noticed once, not once per task
type Resolver struct {
	oracle Oracle
	logger *slog.Logger

	// group collapses concurrent first-lookups of the same candidate.
	group singleflight.Group

	// mu guards cache and degraded.
	mu       sync.Mutex
	cache    map[string]resolution
	degraded bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for degradation warnings.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a memoizing resolver in front of oracle.
// The oracle must not be nil; callers that want resolution disabled
// entirely skip the resolver instead.
func NewResolver(oracle Oracle, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		oracle: oracle,
		logger: slog.Default(),
		cache:  make(map[string]resolution),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the canonical fully-qualified name for candidate and
// whether the oracle vouched for it. Each distinct candidate reaches the
// oracle at most once per Resolver lifetime; once the oracle turns out to
// be unavailable, no further calls are attempted at all.
func (r *Resolver) Resolve(ctx context.Context, candidate string) (string, bool) {
	r.mu.Lock()
	if res, hit := r.cache[candidate]; hit {
		r.mu.Unlock()
		return res.fqcn, res.ok
	}
	if r.degraded {
		r.mu.Unlock()
		return "", false
	}
	r.mu.Unlock()

	value, _, _ := r.group.Do(candidate, func() (any, error) {
		// Re-check under the flight: a previous flight for this candidate
		// may have completed between the fast path and Do.
		r.mu.Lock()
		if res, hit := r.cache[candidate]; hit {
			r.mu.Unlock()
			return res, nil
		}
		if r.degraded {
			r.mu.Unlock()
			return resolution{}, nil
		}
		r.mu.Unlock()

		return r.lookup(ctx, candidate), nil
	})

	res := value.(resolution)
	return res.fqcn, res.ok
}

// Degraded reports whether the oracle became unavailable during this run.
func (r *Resolver) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.degraded
}

// lookup queries the oracle once and records the outcome.
func (r *Resolver) lookup(ctx context.Context, candidate string) resolution {
	doc, err := r.oracle.LookupModule(ctx, candidate)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case err == nil && doc != nil && doc.FQCN != "":
		res := resolution{fqcn: doc.FQCN, ok: true}
		r.cache[candidate] = res
		return res

	case errors.Is(err, ErrModuleNotFound):
		res := resolution{}
		r.cache[candidate] = res
		r.logger.Debug("module not known to documentation oracle",
			slog.String("module", candidate))
		return res

	default:
		if !r.degraded {
			r.degraded = true
			if err == nil {
				err = ErrOracleUnavailable
			}
			r.logger.Warn("documentation oracle unavailable, module names stay unresolved",
				slog.Any("reason", err))
		}
		return resolution{}
	}
}
