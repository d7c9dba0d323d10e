package table

import "slices"

// Selection is either the "all" sentinel or an explicit set of record ids.
// It is a value: every operation returns a new Selection and never mutates
// the receiver. The zero value is an empty explicit set.
//
// Explicit ids that the current filter hides are kept, but they are left out
// of Count. "All" always means "everything currently visible".
type Selection struct {
	all bool
	ids map[string]struct{}
}

// NewSelection returns an explicit selection of ids.
func NewSelection(ids ...string) Selection {
	s := Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// SelectAll returns the "all" sentinel.
func SelectAll() Selection {
	return Selection{all: true}
}

// IsAll reports whether the selection is the "all" sentinel.
func (s Selection) IsAll() bool {
	return s.all
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return !s.all && len(s.ids) == 0
}

// IsSelected reports whether id is selected. Under "all" every visible row
// is selected, so this is true for any id.
func (s Selection) IsSelected(id string) bool {
	if s.all {
		return true
	}
	_, ok := s.ids[id]
	return ok
}

// IDs returns the explicit ids in sorted order, or nil under "all".
func (s Selection) IDs() []string {
	if s.all {
		return nil
	}
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// ToggleAll flips the "select all" control.
//
//   - From "all" it clears to an empty explicit set.
//   - With no filter narrowing the view it becomes "all".
//   - Under a filter only the visible ids are added to the explicit set;
//     ids selected earlier but hidden by the filter stay selected.
func (s Selection) ToggleAll(visible []string, narrowed bool) Selection {
	if s.all {
		return Selection{}
	}
	if !narrowed {
		return SelectAll()
	}
	ids := s.clone()
	for _, id := range visible {
		ids[id] = struct{}{}
	}
	return Selection{ids: ids}
}

// ToggleOne flips a single id. Under "all" the sentinel is first
// materialised into the visible ids, so deselecting one row yields
// "everything visible except this one".
func (s Selection) ToggleOne(id string, visible []string) Selection {
	var ids map[string]struct{}
	if s.all {
		ids = make(map[string]struct{}, len(visible))
		for _, v := range visible {
			ids[v] = struct{}{}
		}
	} else {
		ids = s.clone()
	}
	if _, ok := ids[id]; ok {
		delete(ids, id)
	} else {
		ids[id] = struct{}{}
	}
	return Selection{ids: ids}
}

// Count is the number shown to the user: the visible count under "all",
// otherwise the explicit ids that are currently visible.
func (s Selection) Count(visible []string) int {
	if s.all {
		return len(visible)
	}
	n := 0
	for _, id := range visible {
		if _, ok := s.ids[id]; ok {
			n++
		}
	}
	return n
}

func (s Selection) clone() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		ids[id] = struct{}{}
	}
	return ids
}

// Resolve turns a selection into the records a bulk action operates on.
// "All" resolves against filtered (what the user sees, in view order); an
// explicit set resolves against all in collection order, so rows selected
// before a filter hid them are still included.
func Resolve[R any](s Selection, all, filtered []R, id func(R) string) []R {
	if s.all {
		out := make([]R, len(filtered))
		copy(out, filtered)
		return out
	}
	out := make([]R, 0, len(s.ids))
	for _, r := range all {
		if _, ok := s.ids[id(r)]; ok {
			out = append(out, r)
		}
	}
	return out
}
