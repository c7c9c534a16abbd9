package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/sig-0/fxbench/storage/types"
)

// WriteCSV writes the records as CSV, with the Header as the first row
func WriteCSV(w io.Writer, records []*types.BenchmarkRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("unable to write csv header: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(row(record)); err != nil {
			return fmt.Errorf("unable to write csv row: %w", err)
		}
	}

	writer.Flush()

	return writer.Error()
}
