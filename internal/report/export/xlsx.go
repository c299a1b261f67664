// Package export serializes a report table into a spreadsheet.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
	"github.com/aussiebroadwan/eventim-report/pkg/slogx"
)

// DefaultSheet is the name of the single worksheet in a report.
const DefaultSheet = "Sheet1"

// Extension is appended to report file names.
const Extension = ".xlsx"

// XLSXWriter writes a table as an Office Open XML workbook: one header row
// with the column names, then one row per record. Missing cells stay empty.
type XLSXWriter struct {
	Sheet string
}

// NewXLSXWriter returns a writer targeting DefaultSheet.
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{Sheet: DefaultSheet}
}

// WriteTable encodes table into w. Strings longer than a cell can hold are
// cut to excelize.TotalCellChars by the workbook; each one is logged.
func (x *XLSXWriter) WriteTable(ctx context.Context, w io.Writer, table domain.Table) (err error) {
	l := slogx.FromContext(ctx)

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	sheet := x.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("name sheet %q: %w", sheet, err)
		}
	}

	header := make([]any, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i := range table.Rows {
		values := table.Values(i)
		warnTruncated(l, table.Columns, i+2, values)
		if err := setRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func warnTruncated(l *slog.Logger, columns []string, row int, values []any) {
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		if n := utf8.RuneCountInString(str); n > excelize.TotalCellChars {
			l.Warn("cell truncated",
				"column", columns[i],
				"row", row,
				"length", n,
				"limit", excelize.TotalCellChars,
			)
		}
	}
}
