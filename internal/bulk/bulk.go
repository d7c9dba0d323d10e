// Package bulk runs export and delete against a resolved selection.
package bulk

import (
	"context"
	"errors"
	"fmt"

	"github.com/abelbrown/stockroom/internal/api"
	"github.com/abelbrown/stockroom/internal/journal"
	"github.com/abelbrown/stockroom/internal/resource"
	"github.com/abelbrown/stockroom/internal/table"
)

// Action is a bulk operation.
type Action int

const (
	ActionExport Action = iota
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionExport:
		return "export"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

var (
	// ErrCancelled is returned when the user declines a delete.
	ErrCancelled = errors.New("cancelled")
	// ErrEmptySelection is returned when there is nothing to act on.
	ErrEmptySelection = errors.New("nothing selected")
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm answers yes. Used when the caller has already asked.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Backend is what delete needs from the API client.
type Backend interface {
	resource.Fetcher
	CSRFToken(ctx context.Context) (string, error)
	BatchDelete(ctx context.Context, endpoint string, ids []string, csrf string) error
}

var _ Backend = (*api.Client)(nil)

// Summary reports what an action did. For a delete, Records is the refetched
// collection.
type Summary[R any] struct {
	Action    Action
	Count     int
	Location  string
	Records   []R
	Refetched bool
}

// ApplyTo replaces c's records with the refetched collection and clears the
// selection. A summary without a refetch leaves c alone.
func (s Summary[R]) ApplyTo(c *table.Controller[R]) {
	if !s.Refetched {
		return
	}
	c.SetRecords(s.Records)
	c.ClearSelection()
}

// Dispatcher executes actions for one resource.
type Dispatcher[R any] struct {
	Resource resource.Descriptor[R]
	Backend  Backend
	Saver    Saver
	Confirm  Confirmer
	Journal  journal.Recorder // optional
}

// Execute runs action over resolved. Delete asks Confirm first and refetches
// the collection on success.
func (d *Dispatcher[R]) Execute(ctx context.Context, action Action, resolved []R) (Summary[R], error) {
	if len(resolved) == 0 {
		return Summary[R]{Action: action}, ErrEmptySelection
	}
	switch action {
	case ActionExport:
		return d.export(resolved)
	case ActionDelete:
		return d.delete(ctx, resolved)
	default:
		return Summary[R]{Action: action}, fmt.Errorf("unsupported action %s", action)
	}
}
