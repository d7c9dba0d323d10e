// Package ui provides the Bubble Tea TUI for stockroom.
package ui

import (
	"time"

	"github.com/abelbrown/stockroom/internal/bulk"
)

// addressed is implemented by messages meant for one screen.
type addressed interface {
	screen() string
}

// CollectionLoaded is sent when a fetch issued by a screen completes.
// Seq identifies the fetch; responses older than the latest issued are
// dropped.
type CollectionLoaded[R any] struct {
	Screen  string
	Seq     int
	Records []R
	Err     error
	At      time.Time
}

func (m CollectionLoaded[R]) screen() string { return m.Screen }

// ActionFinished is sent when an export or delete completes.
type ActionFinished[R any] struct {
	Screen  string
	Summary bulk.Summary[R]
	Err     error
	At      time.Time
}

func (m ActionFinished[R]) screen() string { return m.Screen }

// PrefSaved reports the result of persisting a page size.
type PrefSaved struct {
	Screen string
	Err    error
}

func (m PrefSaved) screen() string { return m.Screen }
