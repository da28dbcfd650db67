package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/flrload/internal/logging"
	"github.com/vvka-141/flrload/pkg/flrload"
)

// CloudSQLConnector dials Google Cloud SQL with IAM database authentication.
// Close must be called after the pool is closed to release the dialer.
type CloudSQLConnector struct {
	config *flrload.ConnectionConfig
	logger flrload.Logger
	dialer *cloudsqlconn.Dialer
}

func NewCloudSQLConnector(cfg *flrload.ConnectionConfig, logger flrload.Logger) *CloudSQLConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &CloudSQLConnector{config: cfg, logger: logger}
}

func (c *CloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("%w: create Cloud SQL dialer: %w", flrload.ErrConnectionFailed, err)
	}

	dsn := fmt.Sprintf("user=%s dbname=%s sslmode=disable application_name=%s",
		c.config.Username, c.config.Database, c.config.AppName)
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("parse connection config: %w", flrload.ErrInvalidConfig)
	}
	instance := c.config.GoogleInstance
	pc.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, instance)
	}
	configurePool(pc, c.logger)

	pool, err := open(ctx, pc)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("%w: Cloud SQL instance %s: %w", flrload.ErrConnectionFailed, instance, err)
	}
	c.dialer = dialer
	return pool, nil
}

func (c *CloudSQLConnector) Close() error {
	if c.dialer == nil {
		return nil
	}
	err := c.dialer.Close()
	c.dialer = nil
	return err
}
