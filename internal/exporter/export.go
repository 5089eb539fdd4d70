package exporter

import (
	"fmt"
	"log/slog"
	"strings"

	apperrors "energycli/internal/errors"
	"energycli/pkg/contracts/domain"
)

// Format selects the export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", apperrors.NewAppValidationError(fmt.Sprintf("unsupported export format %q (want csv or xlsx)", s))
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Export writes summary to path in the given format. CSV output carries a
// UTF-8 BOM.
func Export(format Format, path string, summary domain.Summary, logger *slog.Logger) error {
	var err error
	switch format {
	case FormatCSV:
		err = NewCSVWriter(logger).WriteSummary(path, summary, true)
	case FormatXLSX:
		err = NewXLSXWriter(logger).WriteSummary(path, summary)
	default:
		return apperrors.NewAppValidationError(fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("export %s", format), err).WithContext("path", path)
	}
	return nil
}
