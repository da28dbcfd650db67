// Package testinfra starts the PostgreSQL instance integration tests run
// against and hands out throwaway databases on it.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestImageEnv overrides the server image, e.g. to test against an older
// PostgreSQL release.
const TestImageEnv = "FLRLOAD_TEST_IMAGE"

const (
	defaultImage = "postgres:17-alpine"
	superuser    = "postgres"
	password     = "postgres"
	adminDB      = "postgres"
)

// Server is a running PostgreSQL container.
type Server struct {
	*postgres.PostgresContainer
	ConnString string
	Image      string
}

// StartServer runs a disposable server. Imports write large COPY batches, so
// durability settings that only slow the tests down are turned off.
func StartServer(ctx context.Context) (*Server, error) {
	image := defaultImage
	if v := os.Getenv(TestImageEnv); v != "" {
		image = v
	}

	ctr, err := postgres.Run(ctx,
		image,
		postgres.WithUsername(superuser),
		postgres.WithPassword(password),
		postgres.WithDatabase(adminDB),
		testcontainers.WithCmd("postgres",
			"-c", "fsync=off",
			"-c", "synchronous_commit=off",
			"-c", "full_page_writes=off",
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres %s: %w", image, err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}
	return &Server{PostgresContainer: ctr, ConnString: connStr, Image: image}, nil
}
