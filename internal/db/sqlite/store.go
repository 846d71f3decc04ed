// Package sqlite provides a SQLite-backed lookup cache for local development,
// single-node deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"sold2move/internal/db"
	"sold2move/internal/models"
	"sold2move/migrations"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store is a SQLite implementation of the lookup cache.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	dsn := path
	if path != MemoryPath {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}

	s := &Store{db: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	src, err := iofs.New(migrations.SQLite, "sqlite")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const lookupColumns = `id, address_hash, property_id, street, city, state, zip,
	homeowner, lookup_success, raw_response, created_at, updated_at`

func scanLookup(row *sql.Row) (*models.CachedLookup, error) {
	var (
		l          models.CachedLookup
		id, key    string
		propertyID sql.NullString
		homeowner  sql.NullString
		raw        sql.NullString
		createdAt  int64
		updatedAt  int64
	)
	err := row.Scan(&id, &key, &propertyID,
		&l.Address.Street, &l.Address.City, &l.Address.State, &l.Address.Zip,
		&homeowner, &l.LookupSucceeded, &raw, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrLookupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning lookup: %w", err)
	}

	if l.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing lookup id: %w", err)
	}
	l.Key = models.LookupKey(key)
	if propertyID.Valid {
		l.PropertyID = &propertyID.String
	}
	if homeowner.Valid {
		if err := db.DecodeHomeowner([]byte(homeowner.String), &l); err != nil {
			return nil, err
		}
	}
	if raw.Valid && raw.String != "" {
		l.RawResponse = json.RawMessage(raw.String)
	}
	l.CreatedAt = time.Unix(0, createdAt).UTC()
	l.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &l, nil
}

// GetLookup returns the cached lookup for a normalized address key.
func (s *Store) GetLookup(ctx context.Context, key models.LookupKey) (*models.CachedLookup, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+lookupColumns+`
		FROM homeowner_lookups WHERE address_hash = ?
	`, string(key))
	return scanLookup(row)
}

// GetLookupByPropertyID returns the most recently updated lookup for a property.
func (s *Store) GetLookupByPropertyID(ctx context.Context, propertyID string) (*models.CachedLookup, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+lookupColumns+`
		FROM homeowner_lookups WHERE property_id = ?
		ORDER BY updated_at DESC LIMIT 1
	`, propertyID)
	return scanLookup(row)
}

// UpsertLookup inserts or replaces the lookup for rec.Key.
func (s *Store) UpsertLookup(ctx context.Context, rec *models.CachedLookup) error {
	homeowner, err := db.EncodeHomeowner(rec)
	if err != nil {
		return err
	}

	now := time.Now().UTC().UnixNano()
	var createdAt, updatedAt int64
	var id string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO homeowner_lookups (id, address_hash, property_id, street, city, state, zip,
			homeowner, lookup_success, raw_response, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(address_hash) DO UPDATE SET
			property_id = COALESCE(excluded.property_id, homeowner_lookups.property_id),
			street = excluded.street,
			city = excluded.city,
			state = excluded.state,
			zip = excluded.zip,
			homeowner = excluded.homeowner,
			lookup_success = excluded.lookup_success,
			raw_response = excluded.raw_response,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at
	`,
		uuid.NewString(),
		string(rec.Key),
		nullString(rec.PropertyID),
		rec.Address.Street,
		rec.Address.City,
		rec.Address.State,
		rec.Address.Zip,
		nullBytes(homeowner),
		rec.LookupSucceeded,
		nullBytes(rec.RawResponse),
		now,
		now,
	).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("upserting lookup: %w", err)
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return fmt.Errorf("parsing lookup id: %w", err)
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return nil
}

// DeleteLookup removes the cached lookup for key.
func (s *Store) DeleteLookup(ctx context.Context, key models.LookupKey) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM homeowner_lookups WHERE address_hash = ?`, string(key))
	if err != nil {
		return fmt.Errorf("deleting lookup: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrLookupNotFound
	}
	return nil
}

// LookupStats counts cached lookups. Successful rows last written before staleBefore count as stale.
func (s *Store) LookupStats(ctx context.Context, staleBefore time.Time) (*models.LookupStats, error) {
	var st models.LookupStats
	var succeeded, stale sql.NullInt64
	cutoff := int64(0)
	if !staleBefore.IsZero() {
		cutoff = staleBefore.UTC().UnixNano()
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			SUM(CASE WHEN lookup_success THEN 1 ELSE 0 END),
			SUM(CASE WHEN lookup_success AND updated_at < ? THEN 1 ELSE 0 END)
		FROM homeowner_lookups
	`, cutoff).Scan(&st.Total, &succeeded, &stale)
	if err != nil {
		return nil, fmt.Errorf("counting lookups: %w", err)
	}
	st.Succeeded = succeeded.Int64
	st.Stale = stale.Int64
	st.Failed = st.Total - st.Succeeded
	return &st, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
