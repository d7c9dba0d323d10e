package table

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// ErrUnknownColumn is returned when a sort names a column the schema does
// not declare as sortable.
var ErrUnknownColumn = errors.New("unknown sort column")

// Direction is the sort order of a column.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Arrow is the glyph shown next to a sorted column header.
func (d Direction) Arrow() string {
	if d == Descending {
		return "↓"
	}
	return "↑"
}

// SortDescriptor names the column to sort by and its direction.
// The zero value means "unsorted": collection order.
type SortDescriptor struct {
	Column    string
	Direction Direction
}

// Toggle returns the descriptor after the user picks column: the same
// column flips direction, a new column starts ascending.
func (d SortDescriptor) Toggle(column string) SortDescriptor {
	if d.Column == column {
		if d.Direction == Ascending {
			d.Direction = Descending
		} else {
			d.Direction = Ascending
		}
		return d
	}
	return SortDescriptor{Column: column, Direction: Ascending}
}

// IsZero reports whether no column is selected.
func (d SortDescriptor) IsZero() bool {
	return d.Column == ""
}

// Validate checks that the descriptor names a sortable column of schema.
func Validate[R any](schema Schema[R], d SortDescriptor) error {
	if d.IsZero() {
		return nil
	}
	f, ok := schema.Field(d.Column)
	if !ok || !f.Sortable {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, d.Column)
	}
	return nil
}

// sortKey is a field value prepared once per record so comparisons do not
// re-fold or re-parse.
type sortKey struct {
	numeric bool
	num     decimal.Decimal
	text    string
}

func compareKeys(a, b sortKey) int {
	switch {
	case a.numeric && b.numeric:
		return a.num.Cmp(b.num)
	case a.numeric:
		return -1
	case b.numeric:
		return 1
	}
	return strings.Compare(a.text, b.text)
}

// Sort returns a new slice ordered by d. The sort is stable: records with
// equal keys keep their input order. Descending is the negated ascending
// comparison. Numeric fields whose value does not parse order after the
// parseable ones.
func Sort[R any](records []R, schema Schema[R], d SortDescriptor) ([]R, error) {
	if err := Validate(schema, d); err != nil {
		return nil, err
	}
	out := make([]R, len(records))
	copy(out, records)
	if d.IsZero() {
		return out, nil
	}

	f, _ := schema.Field(d.Column)
	folder := cases.Fold()

	type keyed struct {
		rec R
		key sortKey
	}
	rows := make([]keyed, len(out))
	for i, r := range out {
		raw := f.Value(r)
		k := sortKey{text: folder.String(raw)}
		if f.Kind == KindNumeric {
			if n, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
				k.numeric = true
				k.num = n
			}
		}
		rows[i] = keyed{rec: r, key: k}
	}

	slices.SortStableFunc(rows, func(a, b keyed) int {
		c := compareKeys(a.key, b.key)
		if d.Direction == Descending {
			return -c
		}
		return c
	})

	for i := range rows {
		out[i] = rows[i].rec
	}
	return out, nil
}
