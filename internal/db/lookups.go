package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"sold2move/internal/models"
)

// lookupColumns is the standard column list for lookup queries.
const lookupColumns = `id, address_hash, property_id, street, city, state, zip,
	homeowner, lookup_success, raw_response, created_at, updated_at`

// scanLookup scans a row into a CachedLookup.
func scanLookup(row pgx.Row) (*models.CachedLookup, error) {
	var (
		l         models.CachedLookup
		key       string
		homeowner []byte
		raw       []byte
	)
	err := row.Scan(
		&l.ID,
		&key,
		&l.PropertyID,
		&l.Address.Street,
		&l.Address.City,
		&l.Address.State,
		&l.Address.Zip,
		&homeowner,
		&l.LookupSucceeded,
		&raw,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLookupNotFound
	}
	if err != nil {
		return nil, err
	}

	l.Key = models.LookupKey(key)
	if err := DecodeHomeowner(homeowner, &l); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		l.RawResponse = json.RawMessage(raw)
	}
	return &l, nil
}

// GetLookup returns the cached lookup for a normalized address key.
func (d *DB) GetLookup(ctx context.Context, key models.LookupKey) (*models.CachedLookup, error) {
	row := d.Pool.QueryRow(ctx, `
		SELECT `+lookupColumns+`
		FROM homeowner_lookups
		WHERE address_hash = $1
	`, string(key))
	return scanLookup(row)
}

// GetLookupByPropertyID returns the most recently updated lookup for a property.
func (d *DB) GetLookupByPropertyID(ctx context.Context, propertyID string) (*models.CachedLookup, error) {
	row := d.Pool.QueryRow(ctx, `
		SELECT `+lookupColumns+`
		FROM homeowner_lookups
		WHERE property_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, propertyID)
	return scanLookup(row)
}

// UpsertLookup inserts or replaces the lookup for rec.Key. The last write wins,
// except that a missing property id never clears a stored one.
func (d *DB) UpsertLookup(ctx context.Context, rec *models.CachedLookup) error {
	homeowner, err := EncodeHomeowner(rec)
	if err != nil {
		return err
	}
	var raw []byte
	if len(rec.RawResponse) > 0 {
		raw = []byte(rec.RawResponse)
	}

	return d.Pool.QueryRow(ctx, `
		INSERT INTO homeowner_lookups (address_hash, property_id, street, city, state, zip,
			homeowner, lookup_success, raw_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (address_hash) DO UPDATE SET
			property_id = COALESCE(EXCLUDED.property_id, homeowner_lookups.property_id),
			street = EXCLUDED.street,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip = EXCLUDED.zip,
			homeowner = EXCLUDED.homeowner,
			lookup_success = EXCLUDED.lookup_success,
			raw_response = EXCLUDED.raw_response,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`,
		string(rec.Key),
		rec.PropertyID,
		rec.Address.Street,
		rec.Address.City,
		rec.Address.State,
		rec.Address.Zip,
		homeowner,
		rec.LookupSucceeded,
		raw,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

// DeleteLookup removes the cached lookup for key.
func (d *DB) DeleteLookup(ctx context.Context, key models.LookupKey) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM homeowner_lookups WHERE address_hash = $1`, string(key))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLookupNotFound
	}
	return nil
}

// LookupStats counts cached lookups. Successful rows last written before staleBefore count as stale.
func (d *DB) LookupStats(ctx context.Context, staleBefore time.Time) (*models.LookupStats, error) {
	var s models.LookupStats
	err := d.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE lookup_success),
			COUNT(*) FILTER (WHERE lookup_success AND updated_at < $1)
		FROM homeowner_lookups
	`, staleBefore).Scan(&s.Total, &s.Succeeded, &s.Stale)
	if err != nil {
		return nil, fmt.Errorf("counting lookups: %w", err)
	}
	s.Failed = s.Total - s.Succeeded
	return &s, nil
}
