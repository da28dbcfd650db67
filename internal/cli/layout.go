package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/flrload/internal/db/manager"
	"github.com/vvka-141/flrload/internal/flr"
	"github.com/vvka-141/flrload/internal/layout"
	"github.com/vvka-141/flrload/internal/ui"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Inspect and check record layouts",
}

var layoutShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active layouts",
	Long: `Show prints every record type with its marker, target table and fields.
Columns are given as written in the layout and as read from the file after
the offset is applied.`,
	Args: cobra.NoArgs,
	RunE: runLayoutShow,
}

var layoutCheckCmd = &cobra.Command{
	Use:   "check <layout_file>",
	Short: "Validate a YAML layout file",
	Args:  RequireLayoutFile,
	RunE:  runLayoutCheck,
}

var layoutShowFile string

func init() {
	rootCmd.AddCommand(layoutCmd)
	layoutCmd.AddCommand(layoutShowCmd, layoutCheckCmd)

	layoutShowCmd.Flags().StringVar(&layoutShowFile, "layout-file", "",
		"YAML layout definition to show instead of the built-in layouts")
}

func runLayoutShow(cmd *cobra.Command, _ []string) error {
	projectCfg, err := loadProjectConfig(getConfigFlag(cmd))
	if err != nil {
		return err
	}
	def, err := loadDefinition(layoutShowFile, projectCfg)
	if err != nil {
		return err
	}
	writeLayouts(os.Stdout, def, ui.DetectMode(os.Stdout))
	return nil
}

func runLayoutCheck(_ *cobra.Command, args []string) error {
	def, err := layout.LoadFile(args[0])
	if err != nil {
		return err
	}
	// The reader performs the cross checks between markers, layouts and
	// synthetic fields.
	if _, err := flr.NewReader(strings.NewReader(""), def.Format); err != nil {
		return fmt.Errorf("layout file %s: %w", args[0], err)
	}

	fields := 0
	for _, l := range def.Format.Layouts {
		fields += l.Len()
	}
	fmt.Fprintf(os.Stdout, "%s %s: %d record types, %d fields, offset %d\n",
		ui.SymbolCheck, args[0], len(def.Format.Layouts), fields, def.Format.Offset)
	return nil
}

func writeLayouts(w io.Writer, def layout.Definition, mode ui.Mode) {
	markers := make(map[string]string, len(def.Format.Markers))
	for m, rt := range def.Format.Markers {
		markers[string(rt)] = m
	}

	for i, l := range def.Format.Layouts {
		rt := l.RecordType()
		if i > 0 {
			fmt.Fprintln(w)
		}

		title := fmt.Sprintf("%s  marker %q  table %s  offset %d", rt, markers[string(rt)], def.Tables[rt], def.Format.Offset)
		if synthetic := def.Format.Synthetic[rt]; len(synthetic) > 0 {
			title += "  synthetic " + strings.Join(synthetic, ",")
		}
		if mode == ui.ModeStyled {
			title = ui.TitleStyle.Render(title)
		}
		fmt.Fprintln(w, title)

		rows := make([][]string, 0, l.Len())
		for _, f := range l.Fields() {
			rows = append(rows, []string{
				f.Name,
				f.Range.String(),
				f.Range.Shift(def.Format.Offset).String(),
				strconv.Itoa(f.Range.Width()),
				f.Kind.String(),
				manager.ColumnType(f),
			})
		}
		fmt.Fprintln(w, ui.Table(mode, []string{"Field", "Columns", "In file", "Width", "Kind", "Column type"}, rows, 3))
	}
}
