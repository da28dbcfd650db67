package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/flrload/pkg/flrload"
)

const sampleDefinition = `offset: 2
markers:
  "10": dwelling
  "20": resident
synthetic:
  resident: [line_number]
record_types:
  - name: dwelling
    table: dwellings
    index: [DWID]
    max_length: 30
    fields:
      - {name: DWID, start: 3, end: 10}
      - {name: ROOMS, start: 11, end: 12}
      - {name: NOTE, start: 13, end: 30, type: text}
  - name: resident
    fields:
      - {name: DWID, start: 3, end: 10}
      - {name: AGE, start: 11, end: 13}
`

func TestParse_FullDefinition(t *testing.T) {
	def, err := Parse([]byte(sampleDefinition))
	require.NoError(t, err)

	assert.Equal(t, 2, def.Format.Offset)
	assert.Equal(t, flrload.RecordType("dwelling"), def.Format.Markers["10"])
	assert.Equal(t, []flrload.RecordType{"dwelling", "resident"}, def.Format.RecordTypes())

	dwelling := def.Format.Layout("dwelling")
	require.NotNil(t, dwelling)
	assert.Equal(t, []string{"DWID", "ROOMS", "NOTE"}, dwelling.FieldNames())
	assert.Equal(t, flrload.KindText, dwelling.Field(2).Kind)
	assert.Equal(t, 30, dwelling.MaxLength())

	assert.Equal(t, "dwellings", def.Tables["dwelling"])
	assert.Equal(t, "resident", def.Tables["resident"], "table defaults to the record type name")
	assert.Equal(t, []string{"DWID"}, def.Indexes["dwelling"])
	assert.Equal(t, []string{flrload.FieldLineNumber}, def.Format.Synthetic["resident"])
}

func TestParse_CollectsAllErrors(t *testing.T) {
	content := `markers:
  H: household
  X: nowhere
synthetic:
  ghost: [line_number]
record_types:
  - name: household
    fields:
      - {name: A, start: 1, end: 5}
      - {name: B, start: 4, end: 6}
      - {name: C, start: 7, end: 8, type: float}
`
	_, err := Parse([]byte(content))
	require.Error(t, err)
	assert.ErrorIs(t, err, flrload.ErrInvalidConfig)

	msg := err.Error()
	assert.Contains(t, msg, "float")
	assert.Contains(t, msg, "nowhere")
	assert.Contains(t, msg, "ghost")
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":        "{{invalid",
		"no record types": "markers: {H: household}\n",
		"no markers":      "record_types:\n  - name: h\n    fields:\n      - {name: A, start: 1, end: 2}\n",
		"negative offset": "offset: -1\nmarkers: {H: h}\nrecord_types:\n  - name: h\n    fields:\n      - {name: A, start: 1, end: 2}\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content))
			assert.ErrorIs(t, err, flrload.ErrInvalidConfig)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDefinition), 0644))

	def, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, def.Format.Layouts, 2)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
