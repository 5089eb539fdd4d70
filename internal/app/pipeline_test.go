package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energycli/internal/config"
	apperrors "energycli/internal/errors"
	"energycli/internal/files"
	"energycli/internal/shared/testutil"
)

func fileConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "owid.csv")
	require.NoError(t, os.WriteFile(input, []byte(testutil.SampleCSV()), 0644))

	cfg := config.Default()
	cfg.Source.Kind = config.SourceFile
	cfg.Source.InputFile = input
	cfg.Summary.Years = 2
	return cfg
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return logger
}

func TestNewPipeline_FileSourceEndToEnd(t *testing.T) {
	cfg := fileConfig(t)
	logger, _ := testutil.NewTestLogger(t)
	out := filepath.Join(t.TempDir(), "summary.json")
	store := NewStore(cfg, out, logger)

	pipeline, err := NewPipeline(cfg, store, nil, logger)
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), cfg.Summary.Years)
	require.NoError(t, err)
	assert.Equal(t, []int{2022, 2021}, result.Summary.Years())

	envelope, err := store.LoadEnvelope(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "CHN", envelope.Entity)
	assert.Equal(t, 2, envelope.Window)
	assert.Equal(t, "unified", envelope.ShareMode)
	require.Len(t, envelope.Summary, 2)

	want := testutil.SampleSummary()
	for i := range want {
		assert.Equal(t, want[i].Year, envelope.Summary[i].Year)
		assert.InDelta(t, want[i].Share.Renewable.Float64, envelope.Summary[i].Share.Renewable.Float64, 1e-9)
		assert.InDelta(t, want[i].Share.NonRenewable.Float64, envelope.Summary[i].Share.NonRenewable.Float64, 1e-9)
	}
}

func TestNewPipeline_InvalidShareMode(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Summary.ShareMode = "weighted"

	_, err := NewPipeline(cfg, files.NewMemoryStore(), nil, testLogger(t))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestNewPipeline_UnknownSource(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Source.Kind = "ftp"

	_, err := NewPipeline(cfg, files.NewMemoryStore(), nil, testLogger(t))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestNewPipeline_MissingInputPersistsNothing(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Source.InputFile = filepath.Join(t.TempDir(), "absent.csv")
	store := files.NewMemoryStore()

	pipeline, err := NewPipeline(cfg, store, nil, testLogger(t))
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), 5)
	require.Error(t, err)
	assert.Zero(t, store.Saves())
}
