package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/vvka-141/flrload/internal/layout"
	"github.com/vvka-141/flrload/pkg/flrload"
)

const smallLayoutYAML = `offset: 1
markers: {H: household, P: person}
synthetic:
  household: [line_number, record_type]
  person: [line_number]
record_types:
  - name: household
    table: hh
    index: [SERIAL]
    fields:
      - {name: YEAR, start: 2, end: 5}
      - {name: SERIAL, start: 8, end: 15}
  - name: person
    table: persons
    fields:
      - {name: YEAR, start: 2, end: 5}
      - {name: SERIALP, start: 8, end: 15}
      - {name: NAME, start: 16, end: 25, type: text}
`

func resetImportFlags() {
	importFlags = importFlagValues{batchSize: flrload.DefaultBatchSize, timeout: flrload.DefaultTimeout}
}

func resetSchemaFlags() {
	schemaFlags = schemaFlagValues{}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// sampleFile writes a census sample with the given shape and returns its path.
func sampleFile(t *testing.T, households, persons int) string {
	t.Helper()
	var buf bytes.Buffer
	err := writeSample(&buf, layout.CensusDefinition(), sampleOptions{households: households, persons: persons, seed: 42, year: 2015})
	if err != nil {
		t.Fatalf("writeSample() error = %v", err)
	}
	return writeFile(t, "sample.dat", buf.String())
}

// isolate runs the test in an empty directory with no connection variables,
// so that neither flrload.yaml, .env nor the caller's environment leak in.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{"FLRLOAD_CONNECTION_STRING", "DATABASE_URL", "PGHOST", "PGPORT", "PGDATABASE", "PGUSER"} {
		t.Setenv(key, "")
	}
}
