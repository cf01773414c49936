package query

import (
	"errors"
	"strconv"
	"strings"

	"spareparts/pkg/catalog"
)

// Limit is the fixed page size; clients cannot change it.
const Limit = 40

// DescendingPrefix marks a descending sort, as in "-price".
const DescendingPrefix = "-"

// ErrUnknownSortField is reported by ParseSort when the field is not part of the schema.
var ErrUnknownSortField = errors.New("unknown sort field")

// RawParams carries the query string values exactly as the client sent them.
type RawParams struct {
	Page         string
	Sort         string
	Name         string
	SerialNumber string
}

// SortMode tells whether and how a result is reordered.
type SortMode int

const (
	// SortNone keeps the filtered records in table order.
	SortNone SortMode = iota
	// SortField orders by SortKey.Field.
	SortField
	// SortUnknown records a sort on a field outside the schema. It reorders nothing.
	SortUnknown
)

// SortKey is the resolved form of the sort parameter.
type SortKey struct {
	Mode       SortMode
	Field      catalog.Field
	Descending bool
}

// Params is the fully defaulted query. It is comparable so it can key the result cache.
type Params struct {
	Page         int
	Sort         SortKey
	Name         string
	SerialNumber string
}

// Normalize turns raw client input into Params. It never fails: a bad page becomes 1 and an
// unknown sort field turns into SortUnknown.
func Normalize(raw RawParams) Params {
	key, _ := ParseSort(raw.Sort)
	return Params{
		Page:         ParsePage(raw.Page),
		Sort:         key,
		Name:         raw.Name,
		SerialNumber: raw.SerialNumber,
	}
}

// ParsePage returns the page number, or 1 when raw is not a positive integer.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParseSort resolves "field" or "-field". An empty value means no sort. An unrecognised field
// yields a SortUnknown key together with ErrUnknownSortField.
func ParseSort(raw string) (SortKey, error) {
	if raw == "" {
		return SortKey{Mode: SortNone}, nil
	}
	name, descending := strings.CutPrefix(raw, DescendingPrefix)
	field, ok := catalog.ParseField(name)
	if !ok {
		return SortKey{Mode: SortUnknown, Descending: descending}, ErrUnknownSortField
	}
	return SortKey{Mode: SortField, Field: field, Descending: descending}, nil
}

// String renders the key back in parameter form.
func (k SortKey) String() string {
	if k.Mode != SortField {
		return ""
	}
	if k.Descending {
		return DescendingPrefix + k.Field.String()
	}
	return k.Field.String()
}
