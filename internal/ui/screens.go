package ui

import (
	"context"
	"fmt"

	"github.com/abelbrown/stockroom/internal/bulk"
	"github.com/abelbrown/stockroom/internal/journal"
	"github.com/abelbrown/stockroom/internal/resource"
	"github.com/abelbrown/stockroom/internal/session"
)

// Prefs persists per-resource page sizes. *store.Store satisfies it.
type Prefs interface {
	PageSize(resource string, fallback int) int
	SetPageSize(resource string, n int) error
}

// Deps is what BuildScreens wires into each TableView.
type Deps struct {
	Backend         bulk.Backend
	Saver           bulk.Saver
	Prefs           Prefs
	Journal         journal.Recorder
	DefaultPageSize int
}

// BuildScreens returns one TableView per resource the profile's role may
// view. An unknown department on the profile is an error.
func BuildScreens(ctx context.Context, deps Deps, profile session.Profile) ([]Screen, error) {
	var screens []Screen
	for _, name := range resource.Screens(profile.Role) {
		switch name {
		case resource.NameInventory:
			screens = append(screens, newScreen(ctx, deps, resource.Inventory))
		case resource.NameUsers:
			screens = append(screens, newScreen(ctx, deps, resource.UsersFor(profile)))
		case resource.NameTasks:
			tasks, err := resource.TasksFor(profile)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", resource.NameTasks, err)
			}
			screens = append(screens, newScreen(ctx, deps, tasks))
		case resource.NameOrders:
			screens = append(screens, newScreen(ctx, deps, resource.Orders))
		}
	}
	return screens, nil
}

func newScreen[R any](ctx context.Context, deps Deps, desc resource.Descriptor[R]) Screen {
	pageSize := deps.DefaultPageSize
	var save func(int) error
	if deps.Prefs != nil {
		pageSize = deps.Prefs.PageSize(desc.Name, pageSize)
		save = func(n int) error { return deps.Prefs.SetPageSize(desc.Name, n) }
	}

	cfg := ViewConfig[R]{
		Resource:     desc,
		PageSize:     pageSize,
		SavePageSize: save,
	}
	if deps.Backend != nil {
		backend := deps.Backend
		cfg.Load = func(ctx context.Context) ([]R, error) {
			return resource.Fetch(ctx, backend, desc)
		}
		cfg.Dispatcher = &bulk.Dispatcher[R]{
			Resource: desc,
			Backend:  backend,
			Saver:    deps.Saver,
			// The view asks before it dispatches.
			Confirm: bulk.AlwaysConfirm,
			Journal: deps.Journal,
		}
	}
	return NewTableView(ctx, cfg)
}
