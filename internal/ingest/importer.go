// Package ingest loads scraped match-log CSV files into tables, one table
// per file, every column typed as text.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jupaf/partidos/internal/ident"
	"github.com/jupaf/partidos/pkg/partidos"
)

const utf8BOM = "\uFEFF"

// TableReport describes one imported file.
type TableReport struct {
	File  string
	Table string
	Rows  int64
}

// Report summarizes an import run.
type Report struct {
	Tables []TableReport

	// Skipped lists files whose name yields no usable table name.
	Skipped []string
}

// Rows returns the total number of rows imported.
func (r *Report) Rows() int64 {
	var n int64
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}

// Importer replaces tables with the contents of CSV files.
type Importer struct {
	store  partidos.Store
	logger partidos.Logger
}

// NewImporter creates an Importer.
//
// Panics if store or logger is nil.
func NewImporter(store partidos.Store, logger partidos.Logger) *Importer {
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Importer{store: store, logger: logger}
}

// ImportDir imports every *.csv file of dir in name order. Each file is
// loaded in its own transaction; the first failure stops the run and files
// already imported stay committed.
func (im *Importer) ImportDir(ctx context.Context, dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read import directory: %w", errors.Join(partidos.ErrInvalidConfig, err))
	}

	report := &Report{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}

		table := TableNameFor(entry.Name())
		if err := ident.CheckTable(table); err != nil {
			im.logger.Info("⚠ Skipping %s: no usable table name", entry.Name())
			report.Skipped = append(report.Skipped, entry.Name())
			continue
		}

		n, err := im.ImportFile(ctx, filepath.Join(dir, entry.Name()), table)
		if err != nil {
			return report, err
		}
		report.Tables = append(report.Tables, TableReport{File: entry.Name(), Table: table, Rows: n})
	}

	if len(report.Tables) == 0 && len(report.Skipped) == 0 {
		im.logger.Info("No CSV files found in %s", dir)
	}
	return report, nil
}

// ImportFile drops table and recreates it from the CSV at path.
func (im *Importer) ImportFile(ctx context.Context, path, table string) (int64, error) {
	if err := ident.CheckTable(table); err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	columns, rows, err := readCSV(f)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	im.logger.Verbose("Read %s: %d column(s), %d row(s)", filepath.Base(path), len(columns), len(rows))

	tx, err := im.store.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			im.logger.Error("Rollback failed: %v", rbErr)
		}
	}()

	textType := im.store.TextType()
	cols := make([]partidos.Column, len(columns))
	for i, name := range columns {
		cols[i] = partidos.Column{Name: name, Type: textType}
	}

	if err := tx.DropTable(ctx, table); err != nil {
		return 0, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}
	if err := tx.CreateTable(ctx, table, cols); err != nil {
		return 0, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}
	n, err := tx.InsertRows(ctx, table, columns, rows)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: failed to commit: %w", partidos.ErrExecutionFailed, err)
	}

	im.logger.Info("✓ %s: %d row(s)", table, n)
	return n, nil
}

// readCSV returns the fixed-up header and the records as bind values. Empty
// fields become NULL, short records are padded with NULL, and records longer
// than the header are an error.
func readCSV(r io.Reader) ([]string, [][]any, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, nil, err
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	columns := columnNames(header)

	var rows [][]any
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(record) > len(columns) {
			line, _ := cr.FieldPos(0)
			return nil, nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(record), len(columns))
		}

		row := make([]any, len(columns))
		for i, v := range record {
			if v != "" {
				row[i] = v
			}
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}
