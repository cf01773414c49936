package catalog

import "fmt"

// Table is the immutable, ordered dataset queries run against. It is built once and only read
// afterwards, so any number of goroutines may share it without locking.
type Table struct {
	records []Record
}

// NewTable builds a table from rows already projected onto Fields. A row of the wrong width
// fails the whole construction; no partial table is returned.
func NewTable(rows [][]*string) (*Table, error) {
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(Fields) {
			return nil, fmt.Errorf("row %d has %d fields, want %d: %w", i, len(row), len(Fields), ErrSchemaMismatch)
		}
		rec := Record{
			Description: clone(row[FieldDescription]),
			Brand:       clone(row[FieldBrand]),
			Code:        clone(row[FieldCode]),
			Price:       clone(row[FieldPrice]),
		}
		if id := row[FieldID]; id != nil {
			rec.ID = *id
		}
		records = append(records, rec)
	}
	return &Table{records: records}, nil
}

// All returns every record in insertion order. The slice is shared; callers must not modify it.
func (t *Table) All() []Record {
	return t.records
}

// Len reports the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// clone detaches a cell from the caller's row so later writes through it cannot reach the table.
func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
