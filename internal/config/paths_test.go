package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name        string
		mutate      func(*Config)
		wantData    string
		wantSummary string
	}{
		{
			name:        "defaults under base dir",
			mutate:      func(c *Config) {},
			wantData:    filepath.Join(base, "data"),
			wantSummary: filepath.Join(base, "data", DefaultSummaryFile),
		},
		{
			name: "absolute summary file is kept",
			mutate: func(c *Config) {
				c.Storage.File = filepath.Join(base, "elsewhere", "s.json")
			},
			wantData:    filepath.Join(base, "data"),
			wantSummary: filepath.Join(base, "elsewhere", "s.json"),
		},
		{
			name: "custom data dir",
			mutate: func(c *Config) {
				c.Paths.DataDir = "var/energy"
			},
			wantData:    filepath.Join(base, "var", "energy"),
			wantSummary: filepath.Join(base, "var", "energy", DefaultSummaryFile),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Paths.BaseDir = base
			tt.mutate(cfg)

			paths, err := NewPaths(cfg)
			require.NoError(t, err)
			assert.Equal(t, base, paths.BaseDir)
			assert.Equal(t, tt.wantData, paths.DataDir)
			assert.Equal(t, tt.wantSummary, paths.SummaryFile)
			assert.Equal(t, filepath.Join(base, "logs", "energy.log"), paths.LogFile)
		})
	}
}

func TestPaths_EnsureDirectories(t *testing.T) {
	cfg := Default()
	cfg.Paths.BaseDir = t.TempDir()

	paths, err := NewPaths(cfg)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPaths_Resolve(t *testing.T) {
	p := &Paths{BaseDir: "/srv/energy"}
	assert.Equal(t, "/abs/file", p.Resolve("/abs/file"))
	assert.Equal(t, filepath.Join("/srv/energy", "rel", "file"), p.Resolve("rel/file"))
}
