package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/flrload/internal/checksum"
	"github.com/vvka-141/flrload/internal/flr"
	"github.com/vvka-141/flrload/internal/layout"
	"github.com/vvka-141/flrload/internal/logging"
	"github.com/vvka-141/flrload/pkg/flrload"
)

var markers = map[flrload.RecordType]string{
	flrload.RecordTypeHousehold: "H",
	flrload.RecordTypePerson:    "P",
}

// censusLine encodes one census line with the given integer fields set and
// every other field blank.
func censusLine(tb testing.TB, rt flrload.RecordType, values map[string]int64) string {
	tb.Helper()
	rec := flrload.NewRecord(rt, 0, len(values))
	for name, v := range values {
		rec.Set(name, flrload.Int(v))
	}
	line, err := flr.Encode(rec, layout.Census().Layout(rt), layout.CensusOffset)
	require.NoError(tb, err)
	return markers[rt] + line[1:]
}

func household(tb testing.TB, serial int64) string {
	return censusLine(tb, flrload.RecordTypeHousehold, map[string]int64{"ACSYR": 2015, "SERIAL": serial})
}

func person(tb testing.TB, serial, pernum int64) string {
	return censusLine(tb, flrload.RecordTypePerson, map[string]int64{"ACSYR": 2015, "SERIALP": serial, "PERNUM": pernum, "AGE": 40})
}

func writeSource(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extract.dat")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func dryRunConfig(path string) flrload.ImportConfig {
	return flrload.ImportConfig{
		SourcePath:   path,
		Format:       layout.Census(),
		Tables:       layout.CensusTables(),
		Indexes:      layout.CensusIndexes(),
		BatchSize:    2,
		ValidateRows: true,
		DryRun:       true,
	}
}

func newTestService(connector *mockConnector, opts ...ImportOption) *ImportService {
	factory := func(*flrload.ConnectionConfig) (flrload.Connector, error) { return connector, nil }
	return NewImportService(factory, &mockSchemaManager{}, &mockLogger{}, opts...)
}

func TestImport_DryRunCountsRecords(t *testing.T) {
	path := writeSource(t,
		household(t, 1), person(t, 1, 1), person(t, 1, 2),
		household(t, 2), person(t, 2, 1),
	)
	connector := &mockConnector{}

	summary, err := newTestService(connector).Import(context.Background(), dryRunConfig(path))
	require.NoError(t, err)

	assert.Equal(t, 0, connector.calls, "dry run must not connect")
	assert.True(t, summary.DryRun)
	assert.Equal(t, path, summary.Source)
	assert.Equal(t, 5, summary.Lines)
	assert.Equal(t, 5, summary.Records())
	_, err = uuid.Parse(summary.RunID)
	assert.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), summary.SourceBytes)
	assert.Equal(t, checksum.Sum(content), summary.SourceSHA256)
	assert.Len(t, summary.NormalizedSHA256, 64)

	assert.Equal(t, flrload.TypeSummary{Table: "households", Records: 2, Batches: 1}, summary.Types[flrload.RecordTypeHousehold])
	assert.Equal(t, flrload.TypeSummary{Table: "people", Records: 3, Batches: 2}, summary.Types[flrload.RecordTypePerson])
}

func TestImport_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dat")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	summary, err := newTestService(&mockConnector{}).Import(context.Background(), dryRunConfig(path))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Lines)
	assert.Equal(t, 0, summary.Records())
	assert.Equal(t, 0, summary.Types[flrload.RecordTypePerson].Batches)
}

func TestImport_ObserverSeesEveryRecord(t *testing.T) {
	path := writeSource(t, household(t, 1), person(t, 1, 1), person(t, 1, 2), person(t, 1, 3))
	obs := newMockObserver()

	_, err := newTestService(&mockConnector{}, WithObserver(obs)).Import(context.Background(), dryRunConfig(path))
	require.NoError(t, err)

	assert.Equal(t, 1, obs.decoded[flrload.RecordTypeHousehold])
	assert.Equal(t, 3, obs.decoded[flrload.RecordTypePerson])
	assert.Equal(t, 3, obs.flushed["people"])
	assert.Equal(t, 1, obs.flushed["households"])
}

func TestImport_ProgressEveryInterval(t *testing.T) {
	line := person(t, 7, 1)
	lines := make([]string, flrload.ProgressInterval+1)
	for i := range lines {
		lines[i] = line
	}
	path := writeSource(t, lines...)

	var buf bytes.Buffer
	factory := func(*flrload.ConnectionConfig) (flrload.Connector, error) { return &mockConnector{}, nil }
	svc := NewImportService(factory, &mockSchemaManager{}, logging.NewWriterLogger(&buf, false))

	cfg := dryRunConfig(path)
	cfg.BatchSize = flrload.DefaultBatchSize
	summary, err := svc.Import(context.Background(), cfg)
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "people so far."))
	assert.Contains(t, out, "Imported 25000 people so far.")
	assert.Contains(t, out, "["+summary.RunID[:8]+"] ")
	assert.Equal(t, 2, summary.Types[flrload.RecordTypePerson].Batches)
}

func TestImport_InvalidConfig(t *testing.T) {
	connector := &mockConnector{}
	cfg := dryRunConfig("")

	_, err := newTestService(connector).Import(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, flrload.ErrInvalidConfig)
	assert.Equal(t, 0, connector.calls)
}

func TestImport_MissingSourceFile(t *testing.T) {
	cfg := dryRunConfig(filepath.Join(t.TempDir(), "nope.dat"))

	_, err := newTestService(&mockConnector{}).Import(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImport_UnrecognizedMarkerStopsRun(t *testing.T) {
	path := writeSource(t, household(t, 1), "X garbage", person(t, 1, 1))

	_, err := newTestService(&mockConnector{}).Import(context.Background(), dryRunConfig(path))
	require.Error(t, err)
	assert.ErrorIs(t, err, flrload.ErrUnrecognizedRecordType)
	assert.Equal(t, flrload.ExitDecodeError, flrload.ExitCodeForError(err))

	var lineErr *flrload.LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, 2, lineErr.Line)
}

func TestImport_FieldDecodeError(t *testing.T) {
	line := []byte(household(t, 12345678))
	copy(line[8:16], "12x45678") // SERIAL, columns 9-16 after offset

	_, err := newTestService(&mockConnector{}).Import(context.Background(), dryRunConfig(writeSource(t, string(line))))
	require.Error(t, err)
	assert.ErrorIs(t, err, flrload.ErrFieldDecode)

	var fieldErr *flrload.FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "SERIAL", fieldErr.Field)
	assert.Equal(t, 9, fieldErr.Start)
	assert.Equal(t, 16, fieldErr.End)
}

func TestImport_CancelledContext(t *testing.T) {
	path := writeSource(t, household(t, 1), person(t, 1, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(&mockConnector{}).Import(ctx, dryRunConfig(path))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// cancellingObserver cancels the run when the nth record is decoded.
type cancellingObserver struct {
	*mockObserver
	at     int
	seen   int
	cancel context.CancelFunc
}

func (o *cancellingObserver) RecordDecoded(rt flrload.RecordType) {
	o.mockObserver.RecordDecoded(rt)
	o.seen++
	if o.seen == o.at {
		o.cancel()
	}
}

func TestImport_CancelledMidRunFlushesBuffers(t *testing.T) {
	path := writeSource(t, household(t, 1), person(t, 1, 1), person(t, 1, 2))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	obs := &cancellingObserver{mockObserver: newMockObserver(), at: 2, cancel: cancel}

	_, err := newTestService(&mockConnector{}, WithObserver(obs)).Import(ctx, dryRunConfig(path))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, flrload.ErrImportBatchFailed)
	assert.Equal(t, flrload.ExitInterrupted, flrload.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "line 3")

	// Both partial buffers reached the sink despite the cancellation.
	assert.Equal(t, 1, obs.flushed["households"])
	assert.Equal(t, 1, obs.flushed["people"])
}

func TestImport_ConnectionFailure(t *testing.T) {
	path := writeSource(t, household(t, 1))
	connector := &mockConnector{err: flrload.ErrConnectionFailed}

	cfg := dryRunConfig(path)
	cfg.DryRun = false
	cfg.Connection = &flrload.ConnectionConfig{Host: "localhost", Port: 5432, Database: "census"}

	_, err := newTestService(connector).Import(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, flrload.ErrConnectionFailed)
	assert.Equal(t, 1, connector.calls)
}

func TestImport_ConnectorFactoryFailure(t *testing.T) {
	path := writeSource(t, household(t, 1))
	factory := func(*flrload.ConnectionConfig) (flrload.Connector, error) {
		return nil, flrload.ErrUnsupportedAuthMethod
	}
	svc := NewImportService(factory, &mockSchemaManager{}, &mockLogger{})

	cfg := dryRunConfig(path)
	cfg.DryRun = false
	cfg.Connection = &flrload.ConnectionConfig{Host: "localhost"}

	_, err := svc.Import(context.Background(), cfg)
	assert.ErrorIs(t, err, flrload.ErrUnsupportedAuthMethod)
}

func TestImport_ReaderConfigErrorBeforeConnecting(t *testing.T) {
	path := writeSource(t, household(t, 1))
	connector := &mockConnector{}

	cfg := dryRunConfig(path)
	cfg.DryRun = false
	cfg.Connection = &flrload.ConnectionConfig{Host: "localhost"}
	cfg.Format.Synthetic = map[flrload.RecordType][]string{flrload.RecordTypePerson: {"SERIALP"}}

	_, err := newTestService(connector).Import(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, flrload.ExitConfigError, flrload.ExitCodeForError(err))
	assert.Equal(t, 0, connector.calls)
}

func TestNewImportService_PanicsOnNilDependencies(t *testing.T) {
	factory := func(*flrload.ConnectionConfig) (flrload.Connector, error) { return nil, nil }

	assert.Panics(t, func() { NewImportService(nil, &mockSchemaManager{}, &mockLogger{}) })
	assert.Panics(t, func() { NewImportService(factory, nil, &mockLogger{}) })
	assert.Panics(t, func() { NewImportService(factory, &mockSchemaManager{}, nil) })
	assert.NotPanics(t, func() { NewImportService(factory, &mockSchemaManager{}, &mockLogger{}) })
}
