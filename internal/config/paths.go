package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved, absolute application paths.
type Paths struct {
	BaseDir     string
	DataDir     string
	LogsDir     string
	ExportsDir  string
	SummaryFile string
	LogFile     string
}

// NewPaths resolves the configured directories. A relative BaseDir, or an
// empty one, is taken relative to the working directory; every other
// relative path is taken relative to BaseDir.
func NewPaths(cfg *Config) (*Paths, error) {
	base := cfg.Paths.BaseDir
	if base == "" {
		base = "."
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	p := &Paths{BaseDir: base}
	p.DataDir = p.Resolve(cfg.Paths.DataDir)
	p.LogsDir = p.Resolve(cfg.Paths.LogsDir)
	p.ExportsDir = p.Resolve(cfg.Paths.ExportsDir)

	if filepath.IsAbs(cfg.Storage.File) {
		p.SummaryFile = cfg.Storage.File
	} else {
		p.SummaryFile = filepath.Join(p.DataDir, cfg.Storage.File)
	}
	if cfg.Logging.FilePath != "" {
		p.LogFile = p.Resolve(cfg.Logging.FilePath)
	}

	return p, nil
}

// Resolve returns path unchanged when absolute, otherwise joined to BaseDir.
func (p *Paths) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.LogsDir,
		filepath.Dir(p.SummaryFile),
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// LogPathResolution logs every resolved path at debug level.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("exports_dir", p.ExportsDir),
		slog.String("summary_file", p.SummaryFile))
}
