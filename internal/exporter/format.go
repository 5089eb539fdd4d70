package exporter

import (
	"strconv"

	"energycli/pkg/contracts/domain"
)

// Columns is the header row shared by every export format.
var Columns = []string{
	"year",
	"total",
	"coal",
	"gas",
	"oil",
	"nuclear",
	"hydro",
	"wind",
	"solar",
	"biofuel",
	"other_renewables",
	"renewable_share",
	"non_renewable_share",
}

// formatFloat formats a quantity with the shortest exact representation.
// Absent values become an empty cell.
func formatFloat(v domain.NullFloat) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

// formatShare formats a fraction with four decimal places.
func formatShare(v domain.NullFloat) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', 4, 64)
}

// formatInt formats a year. Absent years become an empty cell.
func formatInt(v domain.NullInt) string {
	if !v.Valid {
		return ""
	}
	return strconv.Itoa(v.Int)
}

// generationValues lists the mix in column order.
func generationValues(g domain.GenerationMix) []domain.NullFloat {
	return []domain.NullFloat{
		g.Total, g.Coal, g.Gas, g.Oil, g.Nuclear,
		g.Hydro, g.Wind, g.Solar, g.Biofuel, g.Other,
	}
}

// Records converts a summary to CSV records in summary order.
func Records(summary domain.Summary) [][]string {
	records := make([][]string, 0, len(summary))
	for _, e := range summary {
		record := make([]string, 0, len(Columns))
		record = append(record, formatInt(e.Year))
		for _, v := range generationValues(e.Generation) {
			record = append(record, formatFloat(v))
		}
		record = append(record, formatShare(e.Share.Renewable), formatShare(e.Share.NonRenewable))
		records = append(records, record)
	}
	return records
}
