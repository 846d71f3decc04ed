// Package lookup resolves property addresses to homeowner contact data through a
// read-through cache in front of the skip-trace provider.
//
// A lookup runs Validate, DeriveKey, CacheCheck, ExternalCall, Parse, Persist and
// Respond in that order. Only successful lookups are served from cache; failed ones
// are retried against the provider on the next request.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sold2move/internal/db"
	"sold2move/internal/metrics"
	"sold2move/internal/models"
	"sold2move/internal/skiptrace"
	"sold2move/internal/validation"
)

// ErrInvalidRequest is returned when required address fields are missing.
var ErrInvalidRequest = errors.New("missing required address fields")

// persistTimeout bounds the best-effort cache write.
const persistTimeout = 5 * time.Second

// Store is the cache contract used by the orchestrator.
type Store interface {
	GetLookup(ctx context.Context, key models.LookupKey) (*models.CachedLookup, error)
	GetLookupByPropertyID(ctx context.Context, propertyID string) (*models.CachedLookup, error)
	UpsertLookup(ctx context.Context, rec *models.CachedLookup) error
}

// ManagedStore adds the operator and health operations every backend supports.
type ManagedStore interface {
	Store
	DeleteLookup(ctx context.Context, key models.LookupKey) error
	LookupStats(ctx context.Context, staleBefore time.Time) (*models.LookupStats, error)
	Ping(ctx context.Context) error
	Close() error
}

// Provider fetches a raw skip-trace payload for an address.
type Provider interface {
	Lookup(ctx context.Context, addr models.Address) ([]byte, error)
}

// Result is the outcome of a lookup.
type Result struct {
	Key       models.LookupKey
	Homeowner models.Homeowner
	// Success reports whether homeowner data was found.
	Success   bool
	FromCache bool
}

// Service orchestrates cache and provider.
type Service struct {
	store    Store
	provider Provider
	log      *logrus.Entry
}

// NewService creates a lookup service.
func NewService(store Store, provider Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
		log:      logrus.WithField("component", "lookup"),
	}
}

// Lookup resolves req to a homeowner record.
// It returns ErrInvalidRequest for incomplete addresses and *skiptrace.ProviderError when the
// provider fails. Cache failures are logged and never returned.
func (s *Service) Lookup(ctx context.Context, req models.LookupRequest) (*Result, error) {
	addr := req.Address()
	if ok, missing := validation.ValidateAddress(addr); !ok {
		metrics.RecordLookup(models.OutcomeInvalid)
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}

	key := validation.NormalizeAddress(addr)
	propertyID := strings.TrimSpace(req.PropertyID)
	log := s.log.WithField("lookup_key", key)
	if propertyID != "" {
		log = log.WithField("property_id", propertyID)
	}

	if cached := s.cached(ctx, log, key, propertyID); cached != nil {
		log.Debug("Serving homeowner lookup from cache")
		metrics.RecordLookup(models.OutcomeCacheHit)
		h := *cached.Homeowner
		h.EnsureSlices()
		return &Result{Key: key, Homeowner: h, Success: true, FromCache: true}, nil
	}

	raw, err := s.provider.Lookup(ctx, addr)
	if err != nil {
		var perr *skiptrace.ProviderError
		if errors.As(err, &perr) {
			metrics.RecordLookup(models.OutcomeProviderError)
		} else {
			metrics.RecordLookup(models.OutcomeError)
		}
		log.WithError(err).Error("Skip trace provider call failed")
		return nil, err
	}

	parsed, err := skiptrace.Parse(raw)
	if err != nil {
		metrics.RecordLookup(models.OutcomeError)
		return nil, err
	}

	rec := &models.CachedLookup{
		Key:             key,
		Address:         addr,
		Homeowner:       &parsed.Homeowner,
		LookupSucceeded: parsed.Success,
		RawResponse:     raw,
	}
	if propertyID != "" {
		rec.PropertyID = &propertyID
	}
	s.persist(ctx, log, rec)

	if parsed.Success {
		metrics.RecordLookup(models.OutcomeFound)
	} else {
		metrics.RecordLookup(models.OutcomeNotFound)
	}
	log.WithField("success", parsed.Success).Info("Homeowner lookup completed")

	return &Result{Key: key, Homeowner: parsed.Homeowner, Success: parsed.Success}, nil
}

// cached returns a usable cache record, or nil when the provider must be called.
// The property id is checked first; a miss there falls back to the address key.
func (s *Service) cached(ctx context.Context, log *logrus.Entry, key models.LookupKey, propertyID string) *models.CachedLookup {
	if propertyID != "" {
		rec, err := s.store.GetLookupByPropertyID(ctx, propertyID)
		if s.checkRead(log, err) && rec.Usable() {
			return rec
		}
	}

	rec, err := s.store.GetLookup(ctx, key)
	if s.checkRead(log, err) && rec.Usable() {
		return rec
	}
	return nil
}

// checkRead reports whether a cache read returned a record. Read failures count as misses.
func (s *Service) checkRead(log *logrus.Entry, err error) bool {
	if err == nil {
		return true
	}
	if !errors.Is(err, db.ErrLookupNotFound) {
		metrics.RecordPersistFailure()
		log.WithError(err).Warn("Cache read failed, treating as miss")
	}
	return false
}

// persist is the single place where cache write failures are swallowed.
// The write ignores caller cancellation.
func (s *Service) persist(ctx context.Context, log *logrus.Entry, rec *models.CachedLookup) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := s.store.UpsertLookup(ctx, rec); err != nil {
		metrics.RecordPersistFailure()
		log.WithError(err).Warn("Failed to cache homeowner lookup")
	}
}
