// Package hotcache keeps successful lookups in a key-value store (Redis in
// production) in front of the durable lookup table.
package hotcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/storage/redis/v3"
	"github.com/sirupsen/logrus"

	"sold2move/internal/lookup"
	"sold2move/internal/models"
)

const keyPrefix = "sold2move:lookup:"

// KV is the subset of the Fiber storage interface used by the hot tier.
// Get returns a nil value without error on a miss.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
	Close() error
}

// Store layers a KV hot tier over a durable store. Only successful lookups are
// written to the hot tier; durable rows are the source of truth.
type Store struct {
	durable lookup.ManagedStore
	kv      KV
	ttl     time.Duration
	log     *logrus.Entry
}

// New wraps durable with kv. A zero ttl keeps hot entries until they are evicted by Redis.
func New(durable lookup.ManagedStore, kv KV, ttl time.Duration) *Store {
	return &Store{
		durable: durable,
		kv:      kv,
		ttl:     ttl,
		log:     logrus.WithField("component", "hotcache"),
	}
}

// NewRedis connects to Redis at url and wraps durable. The storage driver
// panics when it cannot reach the server; that is returned as an error.
func NewRedis(durable lookup.ManagedStore, url string, ttl time.Duration) (_ *Store, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("connecting to redis: %v", r)
		}
	}()
	kv := redis.New(redis.Config{
		URL:   url,
		Reset: false,
	})
	return New(durable, kv, ttl), nil
}

func hotKey(key models.LookupKey) string {
	return keyPrefix + string(key)
}

// GetLookup serves from the hot tier when possible and back-fills it on a durable hit.
func (s *Store) GetLookup(ctx context.Context, key models.LookupKey) (*models.CachedLookup, error) {
	if rec := s.getHot(key); rec != nil {
		return rec, nil
	}

	rec, err := s.durable.GetLookup(ctx, key)
	if err != nil {
		return nil, err
	}
	s.setHot(rec)
	return rec, nil
}

// GetLookupByPropertyID always reads the durable store; the hot tier is keyed by address only.
func (s *Store) GetLookupByPropertyID(ctx context.Context, propertyID string) (*models.CachedLookup, error) {
	return s.durable.GetLookupByPropertyID(ctx, propertyID)
}

// UpsertLookup writes the durable store first, then refreshes or clears the hot entry.
func (s *Store) UpsertLookup(ctx context.Context, rec *models.CachedLookup) error {
	if err := s.durable.UpsertLookup(ctx, rec); err != nil {
		return err
	}
	s.setHot(rec)
	return nil
}

// DeleteLookup removes the durable row, then the hot entry. The hot entry is
// kept when the durable delete fails so the two tiers do not disagree.
func (s *Store) DeleteLookup(ctx context.Context, key models.LookupKey) error {
	if err := s.durable.DeleteLookup(ctx, key); err != nil {
		return err
	}
	s.deleteHot(key)
	return nil
}

// LookupStats reports durable statistics.
func (s *Store) LookupStats(ctx context.Context, staleBefore time.Time) (*models.LookupStats, error) {
	return s.durable.LookupStats(ctx, staleBefore)
}

// Ping checks the durable store.
func (s *Store) Ping(ctx context.Context) error {
	return s.durable.Ping(ctx)
}

// Close closes both tiers.
func (s *Store) Close() error {
	if err := s.kv.Close(); err != nil {
		s.log.WithError(err).Warn("Failed to close hot cache")
	}
	return s.durable.Close()
}

func (s *Store) getHot(key models.LookupKey) *models.CachedLookup {
	data, err := s.kv.Get(hotKey(key))
	if err != nil {
		s.log.WithError(err).WithField("lookup_key", key).Warn("Hot cache read failed")
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var rec models.CachedLookup
	if err := json.Unmarshal(data, &rec); err != nil {
		s.log.WithError(err).WithField("lookup_key", key).Warn("Discarding undecodable hot cache entry")
		s.deleteHot(key)
		return nil
	}
	return &rec
}

func (s *Store) setHot(rec *models.CachedLookup) {
	if !rec.Usable() {
		s.deleteHot(rec.Key)
		return
	}
	// The raw provider payload stays in the durable row only.
	hot := *rec
	hot.RawResponse = nil
	data, err := json.Marshal(&hot)
	if err != nil {
		s.log.WithError(err).Warn("Failed to encode hot cache entry")
		return
	}
	if err := s.kv.Set(hotKey(rec.Key), data, s.ttl); err != nil {
		s.log.WithError(err).WithField("lookup_key", rec.Key).Warn("Hot cache write failed")
	}
}

func (s *Store) deleteHot(key models.LookupKey) {
	if err := s.kv.Delete(hotKey(key)); err != nil {
		s.log.WithError(err).WithField("lookup_key", key).Warn("Hot cache delete failed")
	}
}
