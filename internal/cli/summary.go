package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/flrload/internal/ui"
	"github.com/vvka-141/flrload/pkg/flrload"
)

// renderSummary formats the outcome of an import for stdout.
func renderSummary(s *flrload.ImportSummary, mode ui.Mode) string {
	types := make([]flrload.RecordType, 0, len(s.Types))
	for rt := range s.Types {
		types = append(types, rt)
	}
	slices.Sort(types)

	rows := make([][]string, 0, len(types))
	for _, rt := range types {
		t := s.Types[rt]
		rows = append(rows, []string{string(rt), t.Table, strconv.Itoa(t.Records), strconv.Itoa(t.Batches)})
	}

	title := fmt.Sprintf("%s Imported %d records from %s", ui.SymbolCheck, s.Records(), s.Source)
	if s.DryRun {
		title = fmt.Sprintf("%s Dry run: decoded %d records from %s, nothing stored", ui.SymbolCheck, s.Records(), s.Source)
	}
	footer := fmt.Sprintf("%d lines in %v (run %s)", s.Lines, s.Duration.Round(time.Millisecond), s.RunID)
	if s.SourceSHA256 != "" {
		footer += fmt.Sprintf("\nsha256 %s  %d bytes", s.SourceSHA256, s.SourceBytes)
	}
	table := ui.Table(mode, []string{"Record type", "Table", "Records", "Batches"}, rows, 2, 3)

	if mode == ui.ModeStyled {
		title = ui.SuccessStyle.Render(title)
		footer = ui.MutedStyle.Render(footer)
	}
	return strings.Join([]string{title, table, footer}, "\n")
}
