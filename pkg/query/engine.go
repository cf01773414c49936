package query

import (
	"slices"

	"spareparts/pkg/catalog"
)

// Result is one page of a query together with the totals a client needs to page through it.
type Result struct {
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
	Data       []catalog.Record `json:"data"`
}

// Execute filters, sorts and paginates table. It only reads the table, so concurrent calls are safe.
func Execute(table *catalog.Table, p Params) Result {
	matched := Filter(table.All(), p.Name, p.SerialNumber)
	return Paginate(Sort(matched, p.Sort), p.Page)
}

// Paginate cuts the window [(page-1)*Limit, page*Limit) out of records. Pages past the end give
// an empty Data slice; pages below 1 are treated as 1.
func Paginate(records []catalog.Record, page int) Result {
	if page < 1 {
		page = 1
	}
	total := len(records)
	res := Result{
		Page:       page,
		Limit:      Limit,
		Total:      total,
		TotalPages: (total + Limit - 1) / Limit,
		Data:       []catalog.Record{},
	}
	if page > res.TotalPages {
		return res
	}
	start := (page - 1) * Limit
	end := min(start+Limit, total)
	res.Data = slices.Clone(records[start:end])
	return res
}

// Engine binds the query functions to one table.
type Engine struct {
	table *catalog.Table
}

// NewEngine returns an engine over table.
func NewEngine(table *catalog.Table) *Engine {
	return &Engine{table: table}
}

// Run executes p against the engine's table.
func (e *Engine) Run(p Params) Result {
	return Execute(e.table, p)
}

// Table exposes the underlying dataset for health reporting.
func (e *Engine) Table() *catalog.Table {
	return e.table
}
