package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
	"github.com/aussiebroadwan/eventim-report/internal/report/export"
	"github.com/aussiebroadwan/eventim-report/pkg/slogx"
)

const (
	DefaultFilePrefix = "Eventim_Stats_SVW_"

	// FileTimeLayout is the UTC timestamp embedded in report file names.
	FileTimeLayout = "20060102T150405Z"
)

// TableWriter serializes a table. export.XLSXWriter implements it.
type TableWriter interface {
	WriteTable(ctx context.Context, w io.Writer, table domain.Table) error
}

type Exporter struct {
	Dir    string
	Prefix string
	Writer TableWriter

	// Now names the file; defaults to time.Now.
	Now func() time.Time
}

// FileName returns the report file name for t.
func (e *Exporter) FileName(t time.Time) string {
	prefix := e.Prefix
	if prefix == "" {
		prefix = DefaultFilePrefix
	}
	return prefix + t.UTC().Format(FileTimeLayout) + export.Extension
}

// Export merges records into one table and writes it to Dir. With no records
// nothing is written (the directory is not even created) and the returned
// path is empty.
func (e *Exporter) Export(ctx context.Context, records []domain.Record) (string, error) {
	l := slogx.FromContext(ctx)

	if len(records) == 0 {
		l.Warn("no data fetched for any registration")
		return "", nil
	}

	table := domain.NewTable(records)
	path := filepath.Join(e.Dir, e.FileName(nowOrDefault(e.Now)))

	if err := e.write(ctx, path, table); err != nil {
		l.Error("failed to save output", "path", path, "error", err)
		return "", &domain.ExportError{Path: path, Err: err}
	}

	l.Info("saved output", "path", path, "rows", len(table.Rows), "columns", len(table.Columns))
	return path, nil
}

// write stages the workbook in a pending file next to the target and only
// renames it into place once it is fully written and synced, so a failed
// run never leaves a truncated report behind.
func (e *Exporter) write(ctx context.Context, path string, table domain.Table) error {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	pf, err := renameio.NewPendingFile(path, renameio.WithTempDir(e.Dir), renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() { _ = pf.Cleanup() }()

	if err := e.Writer.WriteTable(ctx, pf, table); err != nil {
		return fmt.Errorf("serialize table: %w", err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
