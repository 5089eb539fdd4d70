// Package exporter writes an energy summary to tabular formats.
//
// CSVWriter produces a flat CSV file (optionally prefixed with a UTF-8 BOM
// so spreadsheet tools detect the encoding). XLSXWriter produces a workbook
// with a styled header row and the renewable shares formatted as percentages.
//
// Both writers lay the summary out with the same columns, see Columns. Absent
// values become empty cells.
//
// Example usage:
//
//	err := exporter.Export(exporter.FormatCSV, "exports/china.csv", summary, logger)
package exporter
