package exporter

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/xuri/excelize/v2"

	"energycli/internal/files"
	"energycli/pkg/contracts/domain"
)

// SheetName is the worksheet holding the summary.
const SheetName = "Summary"

// Built-in number format 10 is "0.00%".
const percentNumFmt = 10

// XLSXWriter writes summaries as Excel workbooks.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a new workbook writer.
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// Workbook builds the summary workbook in memory. The caller closes it.
func (w *XLSXWriter) Workbook(summary domain.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := xlsxRow(e)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := w.style(f, len(summary)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteSummary writes the summary workbook to filePath, replacing any
// existing file atomically.
func (w *XLSXWriter) WriteSummary(filePath string, summary domain.Summary) error {
	w.logger.Info("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(summary)))

	f, err := w.Workbook(summary)
	if err != nil {
		return err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	return files.WriteFileAtomic(filePath, buf.Bytes())
}

func (w *XLSXWriter) style(f *excelize.File, rows int) error {
	lastCol, err := excelize.ColumnNumberToName(len(Columns))
	if err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	if rows > 0 {
		shareStyle, err := f.NewStyle(&excelize.Style{NumFmt: percentNumFmt})
		if err != nil {
			return fmt.Errorf("failed to create share style: %w", err)
		}
		firstShare, _ := excelize.ColumnNumberToName(len(Columns) - 1)
		if err := f.SetCellStyle(SheetName,
			fmt.Sprintf("%s2", firstShare),
			fmt.Sprintf("%s%d", lastCol, rows+1),
			shareStyle); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetName, "A", lastCol, 14); err != nil {
		return err
	}
	return f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// xlsxRow lays one entry out as typed cells. Absent and non-finite values are
// nil, which leaves the cell empty.
func xlsxRow(e domain.SummaryEntry) []interface{} {
	row := make([]interface{}, 0, len(Columns))
	if e.Year.Valid {
		row = append(row, e.Year.Int)
	} else {
		row = append(row, nil)
	}
	for _, v := range generationValues(e.Generation) {
		row = append(row, cellValue(v))
	}
	return append(row, cellValue(e.Share.Renewable), cellValue(e.Share.NonRenewable))
}

func cellValue(v domain.NullFloat) interface{} {
	if !v.Valid || math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0) {
		return nil
	}
	return v.Float64
}
