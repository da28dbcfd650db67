package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/flrload/pkg/flrload"
)

func peopleColumns() map[string]column {
	return map[string]column{
		"serialp":     {Name: "serialp", Type: "integer", Nullable: true},
		"perwt":       {Name: "perwt", Type: "bigint", Nullable: true},
		"sex":         {Name: "sex", Type: "smallint", Nullable: true},
		"note":        {Name: "note", Type: "text", Nullable: true},
		"line_number": {Name: "line_number", Type: "integer", Nullable: false},
	}
}

func TestCheckRows_Accepts(t *testing.T) {
	cols := []string{"serialp", "perwt", "sex", "note", "line_number"}
	rows := [][]flrload.Value{
		{flrload.Int(1), flrload.Int(12345678901), flrload.Int(2), flrload.Text("x"), flrload.Int(1)},
		{flrload.Empty(), flrload.Empty(), flrload.Empty(), flrload.Int(7), flrload.Int(2)},
	}
	assert.NoError(t, checkRows("people", cols, rows, peopleColumns()))
}

func TestCheckRows_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cols []string
		row  []flrload.Value
		want string
	}{
		{"unknown column", []string{"incwage"}, []flrload.Value{flrload.Int(1)}, "no column incwage"},
		{"integer overflow", []string{"serialp"}, []flrload.Value{flrload.Int(1 << 31)}, "out of range"},
		{"smallint overflow", []string{"sex"}, []flrload.Value{flrload.Int(40000)}, "out of range"},
		{"text in numeric", []string{"perwt"}, []flrload.Value{flrload.Text("abc")}, "in numeric column"},
		{"null in not null", []string{"line_number"}, []flrload.Value{flrload.Empty()}, "NOT NULL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkRows("people", tt.cols, [][]flrload.Value{tt.row}, peopleColumns())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRowRejected)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheckRows_CapsReport(t *testing.T) {
	rows := make([][]flrload.Value, 50)
	for i := range rows {
		rows[i] = []flrload.Value{flrload.Text("bad")}
	}
	err := checkRows("people", []string{"serialp"}, rows, peopleColumns())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 10 ")
	assert.NotContains(t, err.Error(), "row 11 ")
}

func TestRowSource(t *testing.T) {
	src := &rowSource{idx: -1, rows: [][]flrload.Value{
		{flrload.Int(1), flrload.Empty()},
		{flrload.Text("a"), flrload.Int(2)},
	}}

	require.True(t, src.Next())
	v, err := src.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), nil}, v)

	require.True(t, src.Next())
	v, _ = src.Values()
	assert.Equal(t, []any{"a", int64(2)}, v)

	assert.False(t, src.Next())
	assert.NoError(t, src.Err())
}
