// Package table implements the client-side table pipeline shared by every
// listing screen: filter -> sort -> paginate, plus a selection index keyed by
// record identifier. All functions are pure; the Controller bundles the state
// one view needs.
package table

// Kind tells the sort stage how to compare a field's values.
type Kind int

const (
	// KindString compares values case-insensitively.
	KindString Kind = iota
	// KindNumeric compares values as decimal numbers, so "2" sorts before "10".
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	default:
		return "string"
	}
}

// Field describes one column of a record type.
type Field[R any] struct {
	Name       string // stable key, e.g. "sku"
	Title      string // column header
	Kind       Kind
	Searchable bool
	Sortable   bool
	Value      func(R) string
}

// Schema tells the controller how to read a record type: its identifier and
// its columns.
type Schema[R any] struct {
	ID     func(R) string
	Fields []Field[R]
}

// Field looks up a column by name.
func (s Schema[R]) Field(name string) (Field[R], bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[R]{}, false
}

// Searchable returns the fields the filter stage matches against.
func (s Schema[R]) Searchable() []Field[R] {
	var out []Field[R]
	for _, f := range s.Fields {
		if f.Searchable {
			out = append(out, f)
		}
	}
	return out
}

// Sortable returns the names of the sortable fields in declaration order.
func (s Schema[R]) Sortable() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Sortable {
			out = append(out, f.Name)
		}
	}
	return out
}

// Titles returns the column headers for the named fields.
// Unknown names are rendered as-is.
func (s Schema[R]) Titles(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		if f, ok := s.Field(name); ok && f.Title != "" {
			out[i] = f.Title
			continue
		}
		out[i] = name
	}
	return out
}

// Row renders the named fields of r. Unknown names render as "".
func (s Schema[R]) Row(r R, names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		if f, ok := s.Field(name); ok {
			out[i] = f.Value(r)
		}
	}
	return out
}

// IDs returns the identifiers of records in order.
func (s Schema[R]) IDs(records []R) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = s.ID(r)
	}
	return ids
}
