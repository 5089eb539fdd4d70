package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"energycli/pkg/contracts/domain"
)

// FieldMapping names the source column for each YearRecord field.
type FieldMapping struct {
	Year    string
	Total   string
	Coal    string
	Gas     string
	Oil     string
	Nuclear string
	Hydro   string
	Wind    string
	Solar   string
	Biofuel string
	Other   string
}

// OWIDFieldMapping returns the column names of the OWID energy dataset.
func OWIDFieldMapping() FieldMapping {
	return FieldMapping{
		Year:    "year",
		Total:   "electricity_generation",
		Coal:    "coal_electricity",
		Gas:     "gas_electricity",
		Oil:     "oil_electricity",
		Nuclear: "nuclear_electricity",
		Hydro:   "hydro_electricity",
		Wind:    "wind_electricity",
		Solar:   "solar_electricity",
		Biofuel: "biofuel_electricity",
		Other:   "other_renewable_electricity",
	}
}

// Normalizer converts raw rows into typed year records.
type Normalizer struct {
	logger  *slog.Logger
	mapping FieldMapping
}

// NewNormalizer creates a normalizer for the given column mapping.
func NewNormalizer(logger *slog.Logger, mapping FieldMapping) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger:  logger.With(slog.String("component", "normalizer")),
		mapping: mapping,
	}
}

// NormalizeRow normalizes one row using the OWID column mapping.
func NormalizeRow(row domain.RawRow) domain.YearRecord {
	return normalize(row, OWIDFieldMapping())
}

// NormalizeRow maps row onto a YearRecord. It never fails.
func (n *Normalizer) NormalizeRow(row domain.RawRow) domain.YearRecord {
	return normalize(row, n.mapping)
}

// NormalizeRows normalizes rows in order and drops repeated years, keeping
// the first occurrence. Records with an absent year are all kept.
func (n *Normalizer) NormalizeRows(ctx context.Context, rows []domain.RawRow) []domain.YearRecord {
	records := make([]domain.YearRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, n.NormalizeRow(row))
	}
	return n.DedupeYears(ctx, records)
}

// DedupeYears drops records whose year already appeared earlier in records.
func (n *Normalizer) DedupeYears(ctx context.Context, records []domain.YearRecord) []domain.YearRecord {
	seen := make(map[int]struct{}, len(records))
	out := make([]domain.YearRecord, 0, len(records))
	for _, rec := range records {
		if rec.Year.Valid {
			if _, dup := seen[rec.Year.Int]; dup {
				n.logger.WarnContext(ctx, "duplicate year dropped",
					slog.Int("year", rec.Year.Int))
				continue
			}
			seen[rec.Year.Int] = struct{}{}
		}
		out = append(out, rec)
	}
	return out
}

func normalize(row domain.RawRow, m FieldMapping) domain.YearRecord {
	return domain.YearRecord{
		Year: ParseYear(row[m.Year]),
		Generation: domain.GenerationMix{
			Total:   ParseMetric(field(row, m.Total)),
			Coal:    ParseMetric(field(row, m.Coal)),
			Gas:     ParseMetric(field(row, m.Gas)),
			Oil:     ParseMetric(field(row, m.Oil)),
			Nuclear: ParseMetric(field(row, m.Nuclear)),
			Hydro:   ParseMetric(field(row, m.Hydro)),
			Wind:    ParseMetric(field(row, m.Wind)),
			Solar:   ParseMetric(field(row, m.Solar)),
			Biofuel: ParseMetric(field(row, m.Biofuel)),
			Other:   ParseMetric(field(row, m.Other)),
		},
	}
}

// field looks up a mapped column; an unmapped field is always absent.
func field(row domain.RawRow, column string) string {
	if column == "" {
		return ""
	}
	return row[column]
}

// ParseYear reads the leading integer of s after trimming, so "2021" and
// "2021.0" are both 2021. Anything else is absent.
func ParseYear(s string) domain.NullInt {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return domain.NullInt{}
	}
	year, err := strconv.Atoi(s[:end])
	if err != nil {
		return domain.NullInt{}
	}
	return domain.Int(year)
}

// ParseMetric parses a trimmed decimal number. Empty, malformed and
// non-finite values are absent.
func ParseMetric(s string) domain.NullFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Absent()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.Absent()
	}
	return domain.Float(v)
}
