package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/flrload/internal/db"
	"github.com/vvka-141/flrload/internal/db/manager"
	"github.com/vvka-141/flrload/internal/layout"
	"github.com/vvka-141/flrload/internal/logging"
	"github.com/vvka-141/flrload/internal/ui"
	"github.com/vvka-141/flrload/pkg/flrload"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create or drop the import tables",
	Long: `Schema manages one table per record type. Every layout field becomes an
integer or text column, followed by the synthetic columns (line_number,
record_type) and an index on the serial number.`,
}

var schemaCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create missing import tables",
	Args:  cobra.NoArgs,
	RunE:  runSchemaCreate,
}

var schemaDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop the import tables",
	Long: `Drop removes the import tables and every row in them.

On a terminal you are asked to type the table names to confirm. Without a
terminal --force is required.`,
	Args: cobra.NoArgs,
	RunE: runSchemaDrop,
}

type schemaFlagValues struct {
	conn       connectionFlags
	layoutFile string
	force      bool
}

var schemaFlags schemaFlagValues

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaCreateCmd, schemaDropCmd)

	for _, c := range []*cobra.Command{schemaCreateCmd, schemaDropCmd} {
		addConnectionFlags(c, &schemaFlags.conn)
		c.Flags().StringVar(&schemaFlags.layoutFile, "layout-file", "",
			"YAML layout definition replacing the built-in IPUMS USA layouts")
	}
	schemaDropCmd.Flags().BoolVar(&schemaFlags.force, "force", false,
		"Skip the confirmation prompt (required when not on a terminal)")
}

// tableSpecs returns one TableSpec per record type, in layout order.
func tableSpecs(def layout.Definition) []flrload.TableSpec {
	specs := make([]flrload.TableSpec, 0, len(def.Format.Layouts))
	for _, l := range def.Format.Layouts {
		rt := l.RecordType()
		specs = append(specs, flrload.TableSpec{
			Name:         def.Tables[rt],
			Layout:       l,
			Synthetic:    def.Format.Synthetic[rt],
			IndexColumns: def.Indexes[rt],
		})
	}
	return specs
}

// withSchemaConnection resolves configuration, connects and runs fn.
func withSchemaConnection(cmd *cobra.Command, fn func(ctx context.Context, conn flrload.DBConnection, specs []flrload.TableSpec, logger flrload.Logger) error) error {
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(getConfigFlag(cmd))
	if err != nil {
		return err
	}
	def, err := loadDefinition(schemaFlags.layoutFile, projectCfg)
	if err != nil {
		return err
	}
	connConfig, err := resolveConnectionFromFlags(schemaFlags.conn, projectCfg, verbose)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	connector, err := db.NewConnector(connConfig, logger)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	defer closeConnector(connector)

	pool, err := connector.Connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, db.NewAdapter(pool), tableSpecs(def), logger)
}

func runSchemaCreate(cmd *cobra.Command, _ []string) error {
	return withSchemaConnection(cmd, func(ctx context.Context, conn flrload.DBConnection, specs []flrload.TableSpec, logger flrload.Logger) error {
		m := manager.New()
		for _, spec := range specs {
			exists, err := m.Exists(ctx, conn, spec.Name)
			if err != nil {
				return err
			}
			if exists {
				logger.Info("Table %s already exists", spec.Name)
				continue
			}
			if err := m.Create(ctx, conn, spec); err != nil {
				return err
			}
			logger.Info("%s Created table %s", ui.SymbolCheck, spec.Name)
		}
		return nil
	})
}

func runSchemaDrop(cmd *cobra.Command, _ []string) error {
	approver, err := selectApprover(schemaFlags.force)
	if err != nil {
		return err
	}

	return withSchemaConnection(cmd, func(ctx context.Context, conn flrload.DBConnection, specs []flrload.TableSpec, logger flrload.Logger) error {
		names := make([]string, len(specs))
		for i, spec := range specs {
			names[i] = spec.Name
		}

		ok, err := approver.RequestApproval(ctx, "drop", strings.Join(names, ","))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("drop of %s not confirmed", strings.Join(names, ", "))
		}

		m := manager.New()
		for _, name := range names {
			if err := m.Drop(ctx, conn, name); err != nil {
				return err
			}
			logger.Info("%s Dropped table %s", ui.SymbolCheck, name)
		}
		return nil
	})
}

// selectApprover picks the confirmation strategy for destructive commands.
func selectApprover(force bool) (ui.Approver, error) {
	if force {
		return ui.NewForcedApprover(os.Stderr), nil
	}
	if !ui.IsInteractive() {
		return nil, fmt.Errorf("refusing to drop tables without a terminal, pass --force: %w", flrload.ErrInvalidConfig)
	}
	return ui.NewInteractiveApprover(os.Stdin, os.Stderr), nil
}

func closeConnector(c flrload.Connector) {
	if closer, ok := c.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
