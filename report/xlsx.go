package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sig-0/fxbench/storage/types"
)

const (
	defaultSheet = "Sheet1"
	columnWidth  = 18
)

// WriteXLSX writes the records as a single-sheet spreadsheet.
// Amounts and rates are stored as numeric cells
func WriteXLSX(w io.Writer, records []*types.BenchmarkRecord) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // Fine to ignore

	if err := f.SetSheetName(defaultSheet, SheetName); err != nil {
		return fmt.Errorf("unable to name sheet: %w", err)
	}

	header := make([]any, 0, len(Header))
	for _, column := range Header {
		header = append(header, column)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("unable to write header: %w", err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("unable to resolve cell: %w", err)
		}

		values := []any{
			record.Competitor,
			record.Route.String(),
			record.Route.Origin.String(),
			record.Route.Destination.String(),
			record.QuotedAmount,
			record.DirectRate,
			record.InverseRate,
			record.Timestamp.UTC().Format(time.RFC3339),
			record.Status.String(),
			record.Source,
			record.Confidence,
		}

		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("unable to write row: %w", err)
		}
	}

	lastColumn, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		return fmt.Errorf("unable to resolve column: %w", err)
	}

	if err := f.SetColWidth(SheetName, "A", lastColumn, columnWidth); err != nil {
		return fmt.Errorf("unable to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("unable to write spreadsheet: %w", err)
	}

	return nil
}
