package query

import (
	"slices"
	"strings"

	"spareparts/pkg/catalog"
)

// sortItem pairs a record with its precomputed sort value so prices are parsed once per record.
type sortItem struct {
	rec   catalog.Record
	value *string
	price float64
}

// Sort returns the records ordered by key. The input is never modified; for SortNone and
// SortUnknown it is returned unchanged. The sort is stable.
func Sort(records []catalog.Record, key SortKey) []catalog.Record {
	if key.Mode != SortField || len(records) < 2 {
		return records
	}

	items := make([]sortItem, len(records))
	for i, rec := range records {
		items[i] = sortItem{rec: rec, value: rec.Value(key.Field)}
		if key.Field == catalog.FieldPrice && items[i].value != nil {
			items[i].price = ParsePrice(*items[i].value)
		}
	}

	cmp := compareItems(key.Field)
	if key.Descending {
		asc := cmp
		cmp = func(a, b sortItem) int { return asc(b, a) }
	}
	slices.SortStableFunc(items, cmp)

	sorted := make([]catalog.Record, len(items))
	for i, it := range items {
		sorted[i] = it.rec
	}
	return sorted
}

// compareItems is the ascending comparator for a field. A null sorts before any value;
// price compares numerically and every other field byte-wise.
func compareItems(field catalog.Field) func(a, b sortItem) int {
	return func(a, b sortItem) int {
		switch {
		case a.value == nil && b.value == nil:
			return 0
		case a.value == nil:
			return -1
		case b.value == nil:
			return 1
		}
		if field == catalog.FieldPrice {
			return comparePrices(a.price, b.price)
		}
		return strings.Compare(*a.value, *b.value)
	}
}
