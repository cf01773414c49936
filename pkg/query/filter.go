package query

import (
	"strings"

	"spareparts/pkg/catalog"
)

// Filter keeps the records matching every active filter. name matches the description
// case-insensitively and never matches a null description; serial matches the id as is.
// With both filters empty the input slice itself is returned.
func Filter(records []catalog.Record, name, serial string) []catalog.Record {
	if name == "" && serial == "" {
		return records
	}
	needle := strings.ToLower(name)
	matched := make([]catalog.Record, 0)
	for _, rec := range records {
		if name != "" && (rec.Description == nil || !strings.Contains(strings.ToLower(*rec.Description), needle)) {
			continue
		}
		if serial != "" && !strings.Contains(rec.ID, serial) {
			continue
		}
		matched = append(matched, rec)
	}
	return matched
}
