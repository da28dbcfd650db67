package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/flrload/internal/db"
	"github.com/vvka-141/flrload/internal/db/manager"
	"github.com/vvka-141/flrload/internal/logging"
	"github.com/vvka-141/flrload/internal/metrics"
	"github.com/vvka-141/flrload/internal/services"
	"github.com/vvka-141/flrload/internal/ui"
	"github.com/vvka-141/flrload/pkg/flrload"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import an FLR extract into PostgreSQL",
	Long: `Import reads a fixed-length-record extract line by line, decodes every
household and person record, and writes them to their tables in batches.

The import command:
1. Resolves the connection (flags, environment, flrload.yaml)
2. Optionally drops and recreates the target tables (--recreate-schema)
3. Streams the file; progress is reported every 25,000 people
4. Flushes the remaining partial batches and prints a summary

Arguments:
  file    The extract to read (default: source from flrload.yaml, then
          ` + flrload.DefaultSourceFile + `)

Password Authentication:
  Password is NOT accepted as a flag. Use $PGPASSWORD, ~/.pgpass or the
  connection string.

Examples:
  # Import the default extract into a fresh schema
  flrload import -d census --recreate-schema

  # Check a file without touching the database
  flrload import usa_0002.dat --dry-run

  # All or nothing, with row checks and metrics for node_exporter
  flrload import usa_0002.dat -d census --single-transaction --validate \
    --metrics-file /var/lib/node_exporter/flrload.prom`,
	Args: OptionalSourceFile,
	RunE: runImport,
}

type importFlagValues struct {
	conn              connectionFlags
	layoutFile        string
	batchSize         int
	validate          bool
	recreateSchema    bool
	singleTransaction bool
	dryRun            bool
	metricsFile       string
	timeout           time.Duration
}

var importFlags importFlagValues

func init() {
	rootCmd.AddCommand(importCmd)

	addConnectionFlags(importCmd, &importFlags.conn)

	importCmd.Flags().StringVar(&importFlags.layoutFile, "layout-file", "",
		"YAML layout definition replacing the built-in IPUMS USA layouts")
	importCmd.Flags().IntVar(&importFlags.batchSize, "batch-size", flrload.DefaultBatchSize,
		"Records per bulk write")
	importCmd.Flags().BoolVar(&importFlags.validate, "validate", false,
		"Check every row against the table definition and insert row by row\n"+
			"instead of using COPY (slower, reports the offending row)")
	importCmd.Flags().BoolVar(&importFlags.recreateSchema, "recreate-schema", false,
		"Drop and recreate the target tables before importing")
	importCmd.Flags().BoolVar(&importFlags.singleTransaction, "single-transaction", false,
		"Run the whole import in one transaction; nothing is kept on failure")
	importCmd.Flags().BoolVar(&importFlags.dryRun, "dry-run", false,
		"Decode and batch the file without connecting to PostgreSQL")
	importCmd.Flags().StringVar(&importFlags.metricsFile, "metrics-file", "",
		"Write Prometheus metrics of the run to this file (textfile collector format)")

	// Timeout flag - catastrophic failure protection, not normal timeout control
	importCmd.Flags().DurationVar(&importFlags.timeout, "timeout", flrload.DefaultTimeout,
		"Abort the import after this long\n"+
			"Prevents indefinite hangs from network issues or lock waits\n"+
			"Examples: 30m, 2h")
}

// buildImportConfig builds an ImportConfig from CLI flags, flrload.yaml and
// the environment. Flags win over the file.
func buildImportConfig(cmd *cobra.Command, args []string, verbose bool) (flrload.ImportConfig, error) {
	projectCfg, err := loadProjectConfig(getConfigFlag(cmd))
	if err != nil {
		return flrload.ImportConfig{}, err
	}

	source := flrload.DefaultSourceFile
	switch {
	case len(args) == 1:
		source = args[0]
	case projectCfg != nil && projectCfg.Source != "":
		source = projectCfg.Source
	}

	def, err := loadDefinition(importFlags.layoutFile, projectCfg)
	if err != nil {
		return flrload.ImportConfig{}, err
	}

	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, importFlags.timeout)
	if err != nil {
		return flrload.ImportConfig{}, err
	}

	batchSize := importFlags.batchSize
	validate := importFlags.validate
	if projectCfg != nil {
		if projectCfg.BatchSize > 0 && !cmd.Flags().Changed("batch-size") {
			batchSize = projectCfg.BatchSize
		}
		if !cmd.Flags().Changed("validate") {
			validate = projectCfg.Validate
		}
	}

	cfg := flrload.ImportConfig{
		SourcePath:        source,
		Format:            def.Format,
		Tables:            def.Tables,
		Indexes:           def.Indexes,
		BatchSize:         batchSize,
		ValidateRows:      validate,
		RecreateSchema:    importFlags.recreateSchema,
		SingleTransaction: importFlags.singleTransaction,
		DryRun:            importFlags.dryRun,
		Timeout:           timeout,
		Verbose:           verbose,
	}

	if !cfg.DryRun {
		cfg.Connection, err = resolveConnectionFromFlags(importFlags.conn, projectCfg, verbose)
		if err != nil {
			return flrload.ImportConfig{}, err
		}
	}
	return cfg, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := buildImportConfig(cmd, args, verbose)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	collector := metrics.NewCollector()
	connectorFactory := func(c *flrload.ConnectionConfig) (flrload.Connector, error) {
		return db.NewConnector(c, logger)
	}
	svc := services.NewImportService(connectorFactory, manager.New(), logger, services.WithObserver(collector))

	// Handle interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling import...")
			cancel()
		case <-ctx.Done():
		}
	}()

	summary, err := svc.Import(ctx, cfg)
	collector.Finish(time.Now())
	if err != nil {
		collector.RunFailed(err)
	}
	writeMetrics(collector, importFlags.metricsFile, logger)

	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintln(os.Stdout, renderSummary(summary, ui.DetectMode(os.Stdout)))
	return nil
}

func writeMetrics(c *metrics.Collector, path string, logger flrload.Logger) {
	if path == "" {
		return
	}
	if err := c.WriteFile(path); err != nil {
		logger.Error("Failed to write metrics to %s: %v", path, err)
		return
	}
	logger.Verbose("Metrics written to %s", path)
}
