package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vvka-141/flrload/internal/layout"
	"github.com/vvka-141/flrload/internal/ui"
)

func TestWriteLayouts_Plain(t *testing.T) {
	var buf bytes.Buffer
	writeLayouts(&buf, layout.CensusDefinition(), ui.ModePlain)
	out := buf.String()

	for _, want := range []string{
		`household  marker "H"  table households  offset 1  synthetic line_number,record_type`,
		`person  marker "P"  table people  offset 1`,
		"SERIAL ",
		"8..15    9..16",
		"HHWT",
		"bigint",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunLayoutCheck(t *testing.T) {
	if err := runLayoutCheck(nil, []string{writeFile(t, "ok.yaml", smallLayoutYAML)}); err != nil {
		t.Errorf("valid layout rejected: %v", err)
	}

	collision := strings.Replace(smallLayoutYAML, "person: [line_number]", "person: [line_number, record_type, line_number]", 1)
	if err := runLayoutCheck(nil, []string{writeFile(t, "dup.yaml", collision)}); err == nil {
		t.Error("duplicate synthetic field accepted")
	}

	overlap := strings.Replace(smallLayoutYAML, "{name: SERIAL, start: 8, end: 15}", "{name: SERIAL, start: 4, end: 15}", 1)
	if err := runLayoutCheck(nil, []string{writeFile(t, "overlap.yaml", overlap)}); err == nil {
		t.Error("overlapping fields accepted")
	}
}
