package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energycli/internal/config"
	apperrors "energycli/internal/errors"
)

func TestNew(t *testing.T) {
	base := config.Default().Source

	tests := []struct {
		name     string
		kind     string
		wantName string
		wantErr  bool
	}{
		{name: "owid", kind: config.SourceOWID, wantName: "owid"},
		{name: "file", kind: config.SourceFile, wantName: "file"},
		{name: "ember", kind: config.SourceEmber, wantName: "ember"},
		{name: "unknown", kind: "ftp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Kind = tt.kind

			src, err := New(cfg, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, src.Name())
		})
	}
}
