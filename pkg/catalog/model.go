package catalog

// Field names one column of the fixed spare part schema.
type Field int

const (
	FieldID Field = iota
	FieldDescription
	FieldBrand
	FieldCode
	FieldPrice
)

// Fields lists the schema in storage order; every row handed to NewTable follows it.
var Fields = []Field{FieldID, FieldDescription, FieldBrand, FieldCode, FieldPrice}

var fieldNames = [...]string{
	FieldID:          "id",
	FieldDescription: "description",
	FieldBrand:       "brand",
	FieldCode:        "code",
	FieldPrice:       "price",
}

// String returns the wire name used in JSON payloads and sort parameters.
func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "unknown"
	}
	return fieldNames[f]
}

// ParseField resolves a wire name; matching is case-sensitive.
func ParseField(name string) (Field, bool) {
	for _, f := range Fields {
		if fieldNames[f] == name {
			return f, true
		}
	}
	return 0, false
}

// Record is a single spare part. Nullable columns are pointers so JSON keeps null distinct from "".
type Record struct {
	ID          string  `json:"id"`
	Description *string `json:"description"`
	Brand       *string `json:"brand"`
	Code        *string `json:"code"`
	Price       *string `json:"price"`
}

// Value returns the raw column content, nil when the column is null.
func (r Record) Value(f Field) *string {
	switch f {
	case FieldID:
		id := r.ID
		return &id
	case FieldDescription:
		return r.Description
	case FieldBrand:
		return r.Brand
	case FieldCode:
		return r.Code
	case FieldPrice:
		return r.Price
	default:
		return nil
	}
}
