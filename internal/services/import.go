package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/flrload/internal/checksum"
	"github.com/vvka-141/flrload/internal/db"
	"github.com/vvka-141/flrload/internal/flr"
	"github.com/vvka-141/flrload/internal/importer"
	"github.com/vvka-141/flrload/internal/logging"
	"github.com/vvka-141/flrload/internal/sink/memory"
	"github.com/vvka-141/flrload/internal/sink/postgres"
	"github.com/vvka-141/flrload/pkg/flrload"
)

// Observer receives per-record and per-batch notifications during a run.
type Observer interface {
	importer.Observer
	RecordDecoded(rt flrload.RecordType)
}

type nopObserver struct{}

func (nopObserver) RecordDecoded(flrload.RecordType)               {}
func (nopObserver) BatchFlushed(string, int, time.Duration, error) {}

// ImportService reads one FLR file and loads it into one table per record type.
// Thread-Safety: NOT safe for concurrent Import() calls on the same instance.
type ImportService struct {
	connectorFactory func(*flrload.ConnectionConfig) (flrload.Connector, error)
	schema           flrload.SchemaManager
	logger           flrload.Logger
	observer         Observer
	open             func(path string) (io.ReadCloser, error)
}

// ImportOption configures an ImportService.
type ImportOption func(*ImportService)

// WithObserver registers an observer, typically the metrics collector.
func WithObserver(o Observer) ImportOption {
	return func(s *ImportService) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewImportService creates an ImportService. Nil dependencies are programmer
// errors and panic.
func NewImportService(
	connectorFactory func(*flrload.ConnectionConfig) (flrload.Connector, error),
	schema flrload.SchemaManager,
	logger flrload.Logger,
	opts ...ImportOption,
) *ImportService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if schema == nil {
		panic("schema cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	s := &ImportService{
		connectorFactory: connectorFactory,
		schema:           schema,
		logger:           logger,
		observer:         nopObserver{},
		open:             func(path string) (io.ReadCloser, error) { return os.Open(path) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// target is where the importers of one run write.
type target struct {
	sink    flrload.Sink
	conn    flrload.DBConnection // nil in dry-run mode
	commit  func(ctx context.Context) error
	release func()
}

// Import runs one import. Every importer is closed on every exit path; when
// the run fails the returned error joins the cause with any close failures.
func (s *ImportService) Import(ctx context.Context, cfg flrload.ImportConfig) (*flrload.ImportSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	runID := uuid.NewString()
	logger := s.runLogger(runID)
	started := time.Now()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	logger.Verbose("Run %s", runID)
	logger.Verbose("Source file: %s", cfg.SourcePath)

	src, err := s.open(cfg.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	digest := checksum.NewReader(src)
	reader, err := flr.NewReader(digest, cfg.Format)
	if err != nil {
		return nil, err
	}

	tgt, err := s.openTarget(ctx, cfg, runID, logger)
	if err != nil {
		return nil, err
	}
	defer tgt.release()

	if err := s.prepareTables(ctx, tgt.conn, cfg, logger); err != nil {
		return nil, err
	}

	importers := s.importers(tgt.sink, cfg, logger)
	runErr := s.pump(ctx, reader, importers, logger)

	// Buffered records are still flushed after a cancellation, within a
	// bounded grace period.
	closeCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		closeCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), flrload.CloseTimeout)
		defer cancel()
		logger.Info("Interrupted, flushing buffered records")
	}

	var closeErrs []error
	for _, rt := range cfg.Format.RecordTypes() {
		if err := importers[rt].Close(closeCtx); err != nil {
			closeErrs = append(closeErrs, err)
		}
	}
	if err := errors.Join(append([]error{runErr}, closeErrs...)...); err != nil {
		return nil, err
	}

	if err := tgt.commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	summary := &flrload.ImportSummary{
		RunID:    runID,
		Source:   cfg.SourcePath,
		Lines:    reader.Line(),
		Types:    make(map[flrload.RecordType]flrload.TypeSummary, len(importers)),
		Duration: time.Since(started),
		DryRun:   cfg.DryRun,

		SourceBytes:      digest.BytesRead(),
		SourceSHA256:     digest.Raw(),
		NormalizedSHA256: digest.Normalized(),
	}
	for rt, imp := range importers {
		st := imp.Stats()
		summary.Types[rt] = flrload.TypeSummary{Table: imp.Target(), Records: int(st.Rows), Batches: st.Batches}
	}

	logger.Info("Imported %d records from %d lines in %v", summary.Records(), summary.Lines, summary.Duration.Round(time.Millisecond))
	logger.Verbose("Source sha256 %s (%d bytes)", summary.SourceSHA256, summary.SourceBytes)
	return summary, nil
}

// runLogger tags console output with the first block of the run id.
func (s *ImportService) runLogger(runID string) flrload.Logger {
	if cl, ok := s.logger.(*logging.ConsoleLogger); ok {
		return cl.WithPrefix(runID[:8])
	}
	return s.logger
}

func (s *ImportService) openTarget(ctx context.Context, cfg flrload.ImportConfig, runID string, logger flrload.Logger) (*target, error) {
	if cfg.DryRun {
		logger.Verbose("Dry run: records are decoded and batched but not stored")
		return &target{
			sink:    memory.New(false),
			commit:  func(context.Context) error { return nil },
			release: func() {},
		}, nil
	}

	connCfg := *cfg.Connection
	if connCfg.AppName == "" {
		connCfg.AppName = "flrload/" + runID[:8]
	}

	connector, err := s.connectorFactory(&connCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}
	pool, err := connector.Connect(ctx)
	if err != nil {
		closeConnector(connector)
		return nil, err
	}
	releasePool := func() {
		pool.Close()
		closeConnector(connector)
	}

	if !cfg.SingleTransaction {
		return &target{
			sink:    postgres.New(pool),
			conn:    db.NewAdapter(pool),
			commit:  func(context.Context) error { return nil },
			release: releasePool,
		}, nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		releasePool()
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	logger.Verbose("Single transaction: nothing is visible until the whole file is loaded")
	return &target{
		sink:   postgres.New(tx),
		conn:   db.NewAdapter(tx),
		commit: tx.Commit,
		release: func() {
			// no-op after a successful commit
			if err := tx.Rollback(context.Background()); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
				logger.Error("Rollback failed: %v", err)
			}
			releasePool()
		},
	}, nil
}

func closeConnector(c flrload.Connector) {
	if closer, ok := c.(io.Closer); ok {
		_ = closer.Close()
	}
}

// prepareTables recreates every target table when asked to, and otherwise
// checks that they exist.
func (s *ImportService) prepareTables(ctx context.Context, conn flrload.DBConnection, cfg flrload.ImportConfig, logger flrload.Logger) error {
	if conn == nil {
		return nil
	}

	for _, rt := range cfg.Format.RecordTypes() {
		spec := flrload.TableSpec{
			Name:         cfg.Tables[rt],
			Layout:       cfg.Format.Layout(rt),
			Synthetic:    cfg.Format.Synthetic[rt],
			IndexColumns: cfg.Indexes[rt],
		}

		if !cfg.RecreateSchema {
			exists, err := s.schema.Exists(ctx, conn, spec.Name)
			if err != nil {
				return fmt.Errorf("failed to check table %s: %w", spec.Name, err)
			}
			if !exists {
				return fmt.Errorf("table %s does not exist, run 'flrload schema create' or pass --recreate-schema: %w",
					spec.Name, flrload.ErrInvalidConfig)
			}
			continue
		}

		if err := s.schema.Drop(ctx, conn, spec.Name); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", spec.Name, err)
		}
		if err := s.schema.Create(ctx, conn, spec); err != nil {
			return fmt.Errorf("failed to create table %s: %w", spec.Name, err)
		}
		logger.Verbose("Recreated table %s for %s records", spec.Name, rt)
	}
	return nil
}

func (s *ImportService) importers(sink flrload.Sink, cfg flrload.ImportConfig, logger flrload.Logger) map[flrload.RecordType]*importer.Importer {
	out := make(map[flrload.RecordType]*importer.Importer, len(cfg.Format.Layouts))
	for _, l := range cfg.Format.Layouts {
		rt := l.RecordType()
		fields := append(l.FieldNames(), cfg.Format.Synthetic[rt]...)
		out[rt] = importer.New(sink, cfg.Tables[rt],
			importer.WithFields(fields),
			importer.WithBatchSize(cfg.BatchSize),
			importer.WithValidation(cfg.ValidateRows),
			importer.WithLogger(logger),
			importer.WithObserver(s.observer),
		)
	}
	return out
}

// pump moves records from the reader to their importers until the input
// ends or something fails.
func (s *ImportService) pump(ctx context.Context, reader *flr.Reader, importers map[flrload.RecordType]*importer.Importer, logger flrload.Logger) error {
	people := 0
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("import interrupted at line %d: %w", reader.Line(), err)
		}

		rec := reader.Record()
		imp, ok := importers[rec.Type]
		if !ok {
			return &flrload.LineError{Line: rec.Line, RecordType: rec.Type, Err: flrload.ErrUnknownRecordType}
		}
		s.observer.RecordDecoded(rec.Type)

		if err := imp.Append(ctx, rec); err != nil {
			return err
		}

		if rec.Type == flrload.RecordTypePerson {
			people++
			if people%flrload.ProgressInterval == 0 {
				logger.Info("Imported %d people so far.", people)
			}
		}
	}
	return reader.Err()
}
