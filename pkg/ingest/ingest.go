package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"spareparts/pkg/catalog"
)

// Columns is the layout of the tab separated export. The FieldN columns carry nothing the
// catalog serves and are dropped during projection.
var Columns = []string{"id", "description", "Field1", "Field2", "Field3", "Field4", "Field5", "Field6", "brand", "code", "price"}

// Parse reads tab separated lines and projects each onto catalog.Fields. Double quotes are plain
// text in the export, not field delimiters: every one is removed before tokenizing, so an inch
// mark such as `Bolt 12" long` cannot swallow the following cells or lines. Cells that are
// missing or empty become null. Blank lines are skipped.
func Parse(r io.Reader) ([][]*string, error) {
	projection, err := projectionIndexes()
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	reader := csv.NewReader(bytes.NewReader(bytes.ReplaceAll(data, []byte(`"`), nil)))
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1

	var rows [][]*string
	for {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse record %d: %w", len(rows)+1, err)
		}
		row := make([]*string, len(projection))
		for i, col := range projection {
			row[i] = cell(values, col)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Load reads the export at path and builds the catalog table from it.
func Load(path string) (*catalog.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	table, err := catalog.NewTable(rows)
	if err != nil {
		return nil, fmt.Errorf("build catalog from %s: %w", path, err)
	}
	return table, nil
}

// projectionIndexes maps every catalog field to its column in the export.
func projectionIndexes() ([]int, error) {
	indexes := make([]int, len(catalog.Fields))
	for i, field := range catalog.Fields {
		idx := -1
		for col, name := range Columns {
			if name == field.String() {
				idx = col
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("column %q missing from export layout: %w", field, catalog.ErrSchemaMismatch)
		}
		indexes[i] = idx
	}
	return indexes, nil
}

// cell returns the value at col, or nil when it is absent or empty.
func cell(values []string, col int) *string {
	if col >= len(values) || values[col] == "" {
		return nil
	}
	v := values[col]
	return &v
}
