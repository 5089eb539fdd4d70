package files

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"

	"energycli/internal/config"
	apperrors "energycli/internal/errors"
	"energycli/pkg/contracts/domain"
)

// DefaultTable holds one row per saved summary.
const DefaultTable = "energy_summaries"

const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	format VARCHAR(32) NOT NULL,
	entity VARCHAR(16) NOT NULL,
	window_years INT NOT NULL,
	share_mode VARCHAR(16) NOT NULL,
	generated_at DATETIME(6) NOT NULL,
	entries INT NOT NULL,
	checksum VARCHAR(80) NOT NULL,
	payload LONGTEXT NOT NULL,
	INDEX idx_entity_id (entity, id)
)`

// SQLStore keeps every saved summary as a row in MySQL and loads the newest
// one for its entity. Older rows stay as history.
type SQLStore struct {
	db       *sql.DB
	table    string
	location string
	metadata Metadata
	logger   *slog.Logger
	now      func() time.Time
}

// OpenMySQLStore connects with dsn, checks the connection and creates the
// table when missing.
func OpenMySQLStore(ctx context.Context, dsn string, metadata Metadata, logger *slog.Logger) (*SQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid mysql dsn", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, apperrors.NewStorageError("open mysql", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("connect mysql", err).WithContext("addr", cfg.Addr)
	}

	store := NewSQLStore(db, metadata, logger)
	store.location = fmt.Sprintf("mysql://%s/%s#%s", cfg.Addr, cfg.DBName, store.table)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB, metadata Metadata, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{
		db:       db,
		table:    DefaultTable,
		location: "mysql#" + DefaultTable,
		metadata: metadata,
		logger:   logger.With(slog.String("component", "sql_store")),
		now:      time.Now,
	}
}

// EnsureSchema creates the summary table when it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(createTableSQL, s.table)); err != nil {
		return apperrors.NewStorageError("create summary table", err).WithContext("table", s.table)
	}
	return nil
}

// Location implements Store.
func (s *SQLStore) Location() string {
	return s.location
}

// Save implements Store.
func (s *SQLStore) Save(ctx context.Context, summary domain.Summary) error {
	if summary == nil {
		summary = domain.Summary{}
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return apperrors.NewStorageError("encode summary", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(format, entity, window_years, share_mode, generated_at, entries, checksum, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err = s.db.ExecContext(ctx, query,
		config.SummaryFormat,
		s.metadata.Entity,
		s.metadata.Window,
		s.metadata.ShareMode,
		s.now().UTC(),
		len(summary),
		digest(payload),
		string(payload),
	)
	if err != nil {
		return apperrors.NewStorageError("insert summary", err).WithContext("table", s.table)
	}

	s.logger.InfoContext(ctx, "summary saved",
		slog.String("table", s.table),
		slog.String("entity", s.metadata.Entity),
		slog.Int("entries", len(summary)))
	return nil
}

// Load implements Store.
func (s *SQLStore) Load(ctx context.Context) (domain.Summary, error) {
	envelope, err := s.LoadEnvelope(ctx)
	if err != nil {
		return nil, err
	}
	return envelope.Summary, nil
}

// LoadEnvelope returns the newest row for the entity with its metadata.
func (s *SQLStore) LoadEnvelope(ctx context.Context) (*Envelope, error) {
	query := fmt.Sprintf(`SELECT format, entity, window_years, share_mode, generated_at, entries, checksum, payload
		FROM %s WHERE entity = ? ORDER BY id DESC LIMIT 1`, s.table)

	var (
		envelope Envelope
		payload  string
	)
	err := s.db.QueryRowContext(ctx, query, s.metadata.Entity).Scan(
		&envelope.Format,
		&envelope.Entity,
		&envelope.Window,
		&envelope.ShareMode,
		&envelope.GeneratedAt,
		&envelope.Count,
		&envelope.Checksum,
		&payload,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, missingSource(s.location)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("query summary", err).WithContext("table", s.table)
	}

	if envelope.Format != config.SummaryFormat {
		return nil, apperrors.NewParsingError("decode summary", fmt.Errorf("unsupported summary format %q", envelope.Format))
	}
	if got := digest([]byte(payload)); got != envelope.Checksum {
		return nil, apperrors.NewParsingError("decode summary",
			fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, got, envelope.Checksum))
	}
	if err := json.Unmarshal([]byte(payload), &envelope.Summary); err != nil {
		return nil, apperrors.NewParsingError("decode summary", err)
	}
	if envelope.Summary == nil {
		envelope.Summary = domain.Summary{}
	}

	s.logger.DebugContext(ctx, "summary loaded",
		slog.String("table", s.table),
		slog.Int("entries", len(envelope.Summary)))
	return &envelope, nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
