package catalog

import "errors"

// ErrSchemaMismatch is returned when a row does not carry exactly one cell per schema field.
var ErrSchemaMismatch = errors.New("row does not match catalog schema")
