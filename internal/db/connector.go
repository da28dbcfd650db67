package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/flrload/internal/logging"
	"github.com/vvka-141/flrload/internal/retry"
	"github.com/vvka-141/flrload/pkg/flrload"
)

// An import uses one connection at a time; the spare covers schema checks.
const (
	DefaultMaxConns        = 2
	DefaultMinConns        = 1
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(pc *pgxpool.Config, logger flrload.Logger) {
	pc.MaxConns = DefaultMaxConns
	pc.MinConns = DefaultMinConns
	pc.MaxConnIdleTime = DefaultMaxConnIdleTime
	pc.ConnConfig.OnNotice = func(_ *pgconn.PgConn, n *pgconn.Notice) {
		logger.Verbose("postgres %s: %s", strings.ToLower(n.Severity), n.Message)
	}
}

// PoolConnector opens a pgx pool with password or token authentication and
// retries transient failures.
type PoolConnector struct {
	config *flrload.ConnectionConfig
	tokens TokenProvider
	exec   *retry.Executor
	logger flrload.Logger
}

// NewPoolConnector returns a connector for cfg. tokens may be nil, in which
// case cfg.Password is used as is.
func NewPoolConnector(cfg *flrload.ConnectionConfig, tokens TokenProvider, logger flrload.Logger) *PoolConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &PoolConnector{
		config: cfg,
		tokens: tokens,
		exec:   retry.NewExecutor(retry.NewPgClassifier(), retry.NewBackoff(), logger),
		logger: logger,
	}
}

// Connect returns a pool that has answered a ping.
func (c *PoolConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := c.exec.Do(ctx, "connect", func(ctx context.Context) error {
		cfg := *c.config
		if c.tokens != nil {
			token, expiresOn, err := c.tokens.Token(ctx)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", flrload.ErrConnectionFailed, c.tokens, err)
			}
			if left := time.Until(expiresOn); left < 5*time.Minute {
				c.logger.Info("Warning: %s token expires in %v", c.tokens, left.Round(time.Second))
			}
			cfg.Password = token
		}

		pc, err := pgxpool.ParseConfig(BuildConnectionString(&cfg))
		if err != nil {
			return fmt.Errorf("parse connection config: %w", flrload.ErrInvalidConfig)
		}
		configurePool(pc, c.logger)

		p, err := open(ctx, pc)
		if err != nil {
			return wrapConnectionError(err, &cfg)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Verbose("Connected to %s:%d/%s as %s", c.config.Host, c.config.Port, c.config.Database, c.config.Username)
	return pool, nil
}

func open(ctx context.Context, pc *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// NewConnector picks the connector for cfg.AuthMethod.
func NewConnector(cfg *flrload.ConnectionConfig, logger flrload.Logger) (flrload.Connector, error) {
	switch cfg.AuthMethod {
	case flrload.AuthMethodStandard:
		return NewPoolConnector(cfg, nil, logger), nil

	case flrload.AuthMethodAWSIAM:
		tokens, err := NewRDSTokenProvider(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), cfg.AWSRegion, cfg.Username)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", flrload.ErrInvalidConfig, err)
		}
		return NewPoolConnector(cfg, tokens, logger), nil

	case flrload.AuthMethodAzureEntraID:
		tokens, err := NewAzureTokenProvider(cfg.AzureTenantID, cfg.AzureClientID, cfg.AzureClientSecret)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", flrload.ErrConnectionFailed, err)
		}
		return NewPoolConnector(cfg, tokens, logger), nil

	case flrload.AuthMethodGoogleIAM:
		if cfg.GoogleInstance == "" || cfg.Username == "" {
			return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance and -U: %w", flrload.ErrInvalidConfig)
		}
		return NewCloudSQLConnector(cfg, logger), nil

	default:
		return nil, fmt.Errorf("auth method %v: %w", cfg.AuthMethod, flrload.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError adds a hint for the failures users hit most often.
// The result wraps both ErrConnectionFailed and err.
func wrapConnectionError(err error, cfg *flrload.ConnectionConfig) error {
	msg := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var hint string
	switch {
	case strings.Contains(msg, "connection refused"):
		hint = fmt.Sprintf("is PostgreSQL running on %s? (pg_isready -h %s -p %d)", addr, cfg.Host, cfg.Port)
	case strings.Contains(msg, "no such host"):
		hint = fmt.Sprintf("cannot resolve host %q", cfg.Host)
	case strings.Contains(msg, "password authentication failed"):
		hint = "check the user name and $PGPASSWORD"
	case strings.Contains(msg, "does not exist"):
		hint = fmt.Sprintf("create the database first: createdb %s", cfg.Database)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		hint = fmt.Sprintf("no answer from %s", addr)
	case strings.Contains(msg, "ssl"), strings.Contains(msg, "tls"):
		hint = "check --sslmode"
	}

	if hint == "" {
		return fmt.Errorf("%w: %w", flrload.ErrConnectionFailed, err)
	}
	return fmt.Errorf("%w: %s: %w", flrload.ErrConnectionFailed, hint, err)
}
