package testinfra

import (
	"context"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestConnEnv overrides the container with an existing server.
const TestConnEnv = "FLRLOAD_TEST_CONN"

var (
	containerOnce sync.Once
	containerConn string
	containerErr  error
)

func sharedContainer() (string, error) {
	containerOnce.Do(func() {
		srv, err := StartServer(context.Background())
		if err != nil {
			containerErr = err
			return
		}
		containerConn = srv.ConnString
	})
	return containerConn, containerErr
}

// RequireDatabase returns a connection string to a server for integration
// tests. It skips the test in -short mode or when neither FLRLOAD_TEST_CONN
// nor Docker is available.
func RequireDatabase(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if conn := os.Getenv(TestConnEnv); conn != "" {
		return conn
	}
	conn, err := sharedContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnv, err)
	}
	return conn
}

// NewDatabase creates an empty database for one test and returns a pool on
// it along with its connection string. Both are cleaned up with the test.
func NewDatabase(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()
	ctx := context.Background()
	serverConn := RequireDatabase(t)

	admin, err := pgxpool.New(ctx, serverConn)
	if err != nil {
		t.Fatalf("connect to test server: %v", err)
	}

	name := "flrload_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	ident := pgx.Identifier{name}.Sanitize()
	if _, err := admin.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		admin.Close()
		t.Fatalf("create test database: %v", err)
	}

	connStr := withDatabase(serverConn, name)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		admin.Close()
		t.Fatalf("connect to test database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+ident+" WITH (FORCE)"); err != nil {
			t.Logf("Warning: drop test database %s: %v", name, err)
		}
		admin.Close()
	})
	return pool, connStr
}

func withDatabase(conn, name string) string {
	if u, err := url.Parse(conn); err == nil && (u.Scheme == "postgres" || u.Scheme == "postgresql") {
		u.Path = "/" + name
		return u.String()
	}
	return conn + " dbname=" + name
}
