package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	apperrors "energycli/internal/errors"
	"energycli/pkg/contracts/domain"
)

// EntityColumn is the column the CSV sources filter on.
const EntityColumn = "iso_code"

// CSVSource streams the OWID energy CSV over HTTP.
type CSVSource struct {
	client *http.Client
	url    string
	entity string
	logger *slog.Logger
}

// NewCSVSource creates a source for the CSV at url. Only rows whose iso_code
// equals entity are emitted; an empty entity emits every row.
func NewCSVSource(client *http.Client, url, entity string, logger *slog.Logger) *CSVSource {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSource{
		client: client,
		url:    url,
		entity: entity,
		logger: logger.With(slog.String("component", "csv_source")),
	}
}

// Name implements RowSource.
func (s *CSVSource) Name() string { return "owid" }

// Stream implements RowSource.
func (s *CSVSource) Stream(ctx context.Context, fn RowFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return apperrors.NewConfigError("invalid dataset url", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv")

	s.logger.InfoContext(ctx, "fetching dataset",
		slog.String("url", s.url),
		slog.String("entity", s.entity))

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.NewNetworkError("fetch dataset", err).WithContext("url", s.url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.ErrorContext(ctx, "dataset request failed",
			slog.Int("status_code", resp.StatusCode),
			slog.String("url", s.url))
		return apperrors.NewNetworkError(
			fmt.Sprintf("dataset returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil,
		).WithContext("url", s.url)
	}

	matched, err := streamCSV(ctx, resp.Body, s.entity, fn)
	s.logger.InfoContext(ctx, "dataset streamed",
		slog.Int("rows", matched),
		slog.Bool("complete", err == nil))
	return err
}

// FileSource streams the same CSV layout from a local file.
type FileSource struct {
	path   string
	entity string
	logger *slog.Logger
}

// NewFileSource creates a source reading path.
func NewFileSource(path, entity string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		entity: entity,
		logger: logger.With(slog.String("component", "file_source")),
	}
}

// Name implements RowSource.
func (s *FileSource) Name() string { return "file" }

// Stream implements RowSource.
func (s *FileSource) Stream(ctx context.Context, fn RowFunc) error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.NewNotFoundError("input file", err).WithContext("path", s.path)
		}
		return apperrors.NewStorageError("open input file", err).WithContext("path", s.path)
	}
	defer f.Close()

	matched, err := streamCSV(ctx, f, s.entity, fn)
	s.logger.InfoContext(ctx, "input file streamed",
		slog.String("path", s.path),
		slog.Int("rows", matched),
		slog.Bool("complete", err == nil))
	return err
}

// streamCSV decodes r record by record, keyed by the header row, and calls fn
// for every row matching entity. It returns the number of rows passed to fn.
func streamCSV(ctx context.Context, r io.Reader, entity string, fn RowFunc) (int, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, readError(err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}
	columns[0] = strings.TrimPrefix(columns[0], "\ufeff")

	entityIdx := -1
	for i, c := range columns {
		if c == EntityColumn {
			entityIdx = i
			break
		}
	}
	if entity != "" && entityIdx < 0 {
		return 0, apperrors.NewParsingError(fmt.Sprintf("dataset has no %s column", EntityColumn), nil)
	}

	matched := 0
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return matched, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return matched, nil
		}
		if err != nil {
			return matched, readError(err).WithContext("line", line)
		}

		if entity != "" && (entityIdx >= len(record) || record[entityIdx] != entity) {
			continue
		}

		row := make(domain.RawRow, len(columns))
		for i, c := range columns {
			if i < len(record) {
				row[c] = record[i]
			}
		}
		matched++
		if err := fn(row); err != nil {
			return matched, err
		}
	}
}

// readError classifies a CSV read failure. Malformed CSV is a parsing error;
// anything else came from the underlying stream.
func readError(err error) *apperrors.AppError {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return apperrors.NewParsingError("decode dataset", err)
	}
	return apperrors.NewNetworkError("read dataset", err)
}
