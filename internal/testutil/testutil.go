// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"sold2move/internal/db"
	"sold2move/internal/db/sqlite"
)

// TestDB creates a Postgres test database connection and returns a cleanup function.
// The test is skipped unless TEST_DATABASE_URL is set.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Start from an empty table
	cleanupTestData(ctx, database)

	cleanup := func() {
		cleanupTestData(ctx, database)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, database *db.DB) {
	database.Pool.Exec(ctx, "DELETE FROM homeowner_lookups")
}

// MemoryStore opens a migrated in-memory SQLite store that is closed when the test ends.
func MemoryStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// Provider is an httptest skip-trace provider that answers every request
// with a fixed status and body and records what it received.
type Provider struct {
	Server *httptest.Server

	mu         sync.Mutex
	status     int
	body       string
	lastAuth   string
	lastBody   []byte
	callsCount atomic.Int32
}

// NewProvider starts a provider stub that is shut down when the test ends.
func NewProvider(t *testing.T, status int, body string) *Provider {
	t.Helper()

	p := &Provider{status: status, body: body}
	p.Server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.Server.Close)
	return p
}

func (p *Provider) serve(w http.ResponseWriter, r *http.Request) {
	p.callsCount.Add(1)

	buf, _ := io.ReadAll(r.Body)

	p.mu.Lock()
	p.lastAuth = r.Header.Get("Authorization")
	p.lastBody = buf
	status, body := p.status, p.body
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// Respond changes the status and body returned from now on.
func (p *Provider) Respond(status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
	p.body = body
}

// URL returns the stub's base URL.
func (p *Provider) URL() string {
	return p.Server.URL
}

// Calls returns how many requests the stub has received.
func (p *Provider) Calls() int {
	return int(p.callsCount.Load())
}

// LastAuthorization returns the Authorization header of the most recent request.
func (p *Provider) LastAuthorization() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastAuth
}

// LastBody returns the body of the most recent request.
func (p *Provider) LastBody() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastBody
}

// SkipTraceMatch is a provider payload in the skip-trace shape with one match.
const SkipTraceMatch = `{
  "results": {
    "persons": [{
      "name": {"first": "Jane", "last": "Doe", "full": "Jane Doe"},
      "emails": [{"email": "jane@example.com", "tested": true}],
      "enrichedEmails": ["jane.doe@example.net"],
      "phoneNumbers": [
        {"number": "5125550101", "type": "Landline", "carrier": "AT&T", "score": 40, "reachable": true, "dnc": false, "tested": true},
        {"number": "5125550102", "type": "Mobile", "carrier": "Verizon", "score": "95", "reachable": true, "dnc": true, "tested": true}
      ],
      "litigator": false,
      "dnc": {"tcpa": false}
    }],
    "meta": {"results": {"matchCount": 1}}
  }
}`

// SkipTraceNoMatch is a provider payload with no match.
const SkipTraceNoMatch = `{"results": {"persons": [], "meta": {"results": {"matchCount": 0}}}}`
