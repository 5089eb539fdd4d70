package files

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/snappy"
	"golang.org/x/crypto/blake2b"

	"energycli/internal/config"
	apperrors "energycli/internal/errors"
	"energycli/pkg/contracts/domain"
)

// FileStoreOptions configures a FileStore.
type FileStoreOptions struct {
	Path     string
	Compress bool
	Metadata Metadata
}

// FileStore persists the summary as a JSON envelope on disk.
type FileStore struct {
	opts   FileStoreOptions
	logger *slog.Logger
	now    func() time.Time
}

// NewFileStore creates a file-backed store at opts.Path.
func NewFileStore(opts FileStoreOptions, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		opts:   opts,
		logger: logger.With(slog.String("component", "file_store")),
		now:    time.Now,
	}
}

// Path returns the blob location.
func (s *FileStore) Path() string {
	return s.opts.Path
}

// Location implements Store.
func (s *FileStore) Location() string {
	return s.opts.Path
}

// Save implements Store. The previous blob is replaced atomically.
func (s *FileStore) Save(ctx context.Context, summary domain.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if summary == nil {
		summary = domain.Summary{}
	}

	envelope := Envelope{
		Format:      config.SummaryFormat,
		Entity:      s.opts.Metadata.Entity,
		Window:      s.opts.Metadata.Window,
		ShareMode:   s.opts.Metadata.ShareMode,
		GeneratedAt: s.now().UTC(),
		Count:       len(summary),
		Summary:     summary,
	}

	checksum, err := summaryChecksum(summary)
	if err != nil {
		return apperrors.NewStorageError("encode summary", err)
	}
	envelope.Checksum = checksum

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("encode summary", err)
	}
	if s.opts.Compress {
		data = snappy.Encode(nil, data)
	}

	if err := WriteFileAtomic(s.opts.Path, data); err != nil {
		return apperrors.NewStorageError("write summary", err).WithContext("path", s.opts.Path)
	}

	s.logger.InfoContext(ctx, "summary saved",
		slog.String("path", s.opts.Path),
		slog.Int("entries", len(summary)),
		slog.Int("size_bytes", len(data)),
		slog.Bool("compressed", s.opts.Compress))
	return nil
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) (domain.Summary, error) {
	envelope, err := s.LoadEnvelope(ctx)
	if err != nil {
		return nil, err
	}
	return envelope.Summary, nil
}

// LoadEnvelope reads the blob with its metadata. A bare JSON array is
// accepted and returned with only Summary and Count set.
func (s *FileStore) LoadEnvelope(ctx context.Context) (*Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.opts.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, missingSource(s.opts.Path)
		}
		return nil, apperrors.NewStorageError("read summary", err).WithContext("path", s.opts.Path)
	}

	envelope, err := decodeBlob(data)
	if err != nil {
		return nil, apperrors.NewParsingError("decode summary", err).WithContext("path", s.opts.Path)
	}

	s.logger.DebugContext(ctx, "summary loaded",
		slog.String("path", s.opts.Path),
		slog.Int("entries", len(envelope.Summary)))
	return envelope, nil
}

func decodeBlob(data []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(data)
	if !looksLikeJSON(trimmed) {
		decoded, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("blob is neither JSON nor snappy: %w", err)
		}
		trimmed = bytes.TrimSpace(decoded)
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var summary domain.Summary
		if err := json.Unmarshal(trimmed, &summary); err != nil {
			return nil, err
		}
		if summary == nil {
			summary = domain.Summary{}
		}
		return &Envelope{Count: len(summary), Summary: summary}, nil
	}

	var envelope Envelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	if envelope.Format != config.SummaryFormat {
		return nil, fmt.Errorf("unsupported summary format %q", envelope.Format)
	}
	if envelope.Checksum != "" {
		if err := verifyChecksum(trimmed, envelope.Checksum); err != nil {
			return nil, err
		}
	}
	if envelope.Summary == nil {
		envelope.Summary = domain.Summary{}
	}
	return &envelope, nil
}

const checksumPrefix = "blake2b-256:"

// ErrChecksumMismatch reports a blob whose summary does not match its
// recorded digest.
var ErrChecksumMismatch = errors.New("summary checksum mismatch")

func summaryChecksum(summary domain.Summary) (string, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return "", err
	}
	return digest(data), nil
}

func digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return checksumPrefix + hex.EncodeToString(sum[:])
}

// verifyChecksum hashes the compacted summary member of the envelope, so
// indentation does not affect the digest.
func verifyChecksum(envelopeJSON []byte, want string) error {
	if !strings.HasPrefix(want, checksumPrefix) {
		return fmt.Errorf("unsupported checksum %q", want)
	}
	var raw struct {
		Summary json.RawMessage `json:"summary"`
	}
	if err := json.Unmarshal(envelopeJSON, &raw); err != nil {
		return err
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw.Summary); err != nil {
		return err
	}
	if got := digest(compact.Bytes()); got != want {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, got, want)
	}
	return nil
}

func looksLikeJSON(b []byte) bool {
	return len(b) > 0 && (b[0] == '{' || b[0] == '[') && json.Valid(b)
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	return os.Rename(tmpName, path)
}
