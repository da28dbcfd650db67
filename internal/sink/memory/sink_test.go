package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/flrload/pkg/flrload"
)

func TestSink_KeepsRows(t *testing.T) {
	s := New(true)
	ctx := context.Background()

	rows := [][]flrload.Value{{flrload.Int(1), flrload.Text("a")}, {flrload.Int(2), flrload.Empty()}}
	n, err := s.BulkWrite(ctx, "People", []string{"SERIALP", "NOTE"}, rows, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = s.BulkWrite(ctx, "people", []string{"SERIALP", "NOTE"}, rows[:1], true)
	require.NoError(t, err)

	rows[0][0] = flrload.Int(99)

	tbl := s.Table("people")
	require.NotNil(t, tbl)
	assert.Equal(t, []string{"SERIALP", "NOTE"}, tbl.Columns)
	assert.Len(t, tbl.Rows, 3)
	assert.Equal(t, int64(3), tbl.Count)
	assert.Equal(t, 2, tbl.Batches)
	assert.Equal(t, flrload.Int(1), tbl.Rows[0][0], "stored rows must not alias the caller's")
	assert.Equal(t, []string{"people"}, s.Targets())
}

func TestSink_CountOnly(t *testing.T) {
	s := New(false)
	_, err := s.BulkWrite(context.Background(), "households", []string{"SERIAL"}, [][]flrload.Value{{flrload.Int(1)}}, false)
	require.NoError(t, err)

	tbl := s.Table("households")
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, int64(1), tbl.Count)
}

func TestSink_Validation(t *testing.T) {
	s := New(true)
	ctx := context.Background()

	_, err := s.BulkWrite(ctx, "people", []string{"A", "B"}, [][]flrload.Value{{flrload.Int(1)}}, true)
	assert.Error(t, err)

	_, err = s.BulkWrite(ctx, "people", []string{"A"}, [][]flrload.Value{{flrload.Int(1)}}, true)
	require.NoError(t, err)
	_, err = s.BulkWrite(ctx, "people", []string{"B"}, [][]flrload.Value{{flrload.Int(1)}}, true)
	assert.Error(t, err)
	assert.Equal(t, int64(1), s.Table("people").Count)
}

func TestSink_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(true).BulkWrite(ctx, "people", nil, nil, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, New(true).Table("people"))
}
