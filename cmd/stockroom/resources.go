package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abelbrown/stockroom/internal/bulk"
	"github.com/abelbrown/stockroom/internal/resource"
	"github.com/abelbrown/stockroom/internal/table"
)

// listOptions are the table settings a one-shot command applies.
type listOptions struct {
	Query    string
	Sort     string
	Desc     bool
	Page     int
	PageSize int
}

// pageView is one rendered page of a resource.
type pageView struct {
	Headers []string
	Rows    [][]string
	Info    table.PageInfo
}

// resourceOps erases the record type so commands can work on a resource
// picked by name at runtime.
type resourceOps struct {
	name     string
	title    string
	endpoint string

	list   func(ctx context.Context, opts listOptions) (pageView, error)
	export func(ctx context.Context, query string, saver bulk.Saver) (count int, location string, err error)
	delete func(ctx context.Context, ids []string, confirm bulk.Confirmer) (int, error)
}

// resolve returns the operations for name, checking the session's role.
func (c *cli) resolve(name string) (resourceOps, error) {
	profile := c.session.Profile()
	if err := resource.Allowed(profile.Role, name); err != nil {
		return resourceOps{}, err
	}
	switch name {
	case resource.NameInventory:
		return opsFor(c, resource.Inventory), nil
	case resource.NameUsers:
		return opsFor(c, resource.UsersFor(profile)), nil
	case resource.NameTasks:
		tasks, err := resource.TasksFor(profile)
		if err != nil {
			return resourceOps{}, err
		}
		return opsFor(c, tasks), nil
	case resource.NameOrders:
		return opsFor(c, resource.Orders), nil
	}
	return resourceOps{}, fmt.Errorf("unknown resource %q (want one of %s)", name, strings.Join(resource.Names, ", "))
}

func opsFor[R any](c *cli, desc resource.Descriptor[R]) resourceOps {
	load := func(ctx context.Context, pageSize int) (*table.Controller[R], error) {
		records, err := resource.Fetch(ctx, c.client, desc)
		if err != nil {
			return nil, err
		}
		ctl := table.NewController(desc.Schema, pageSize)
		ctl.SetRecords(records)
		return ctl, nil
	}

	return resourceOps{
		name:     desc.Name,
		title:    desc.Title,
		endpoint: desc.Endpoint,

		list: func(ctx context.Context, opts listOptions) (pageView, error) {
			ctl, err := load(ctx, opts.PageSize)
			if err != nil {
				return pageView{}, err
			}
			ctl.SetQuery(opts.Query)
			if opts.Sort != "" {
				dir := table.Ascending
				if opts.Desc {
					dir = table.Descending
				}
				if err := ctl.SetSort(table.SortDescriptor{Column: opts.Sort, Direction: dir}); err != nil {
					return pageView{}, fmt.Errorf("%w (sortable: %s)", err, strings.Join(desc.Schema.Sortable(), ", "))
				}
			}
			if opts.Page > 0 {
				ctl.SetPage(opts.Page)
			}

			view := pageView{
				Headers: desc.Schema.Titles(desc.Columns),
				Info:    ctl.Info(),
			}
			for _, r := range ctl.Page() {
				view.Rows = append(view.Rows, desc.Schema.Row(r, desc.Columns))
			}
			return view, nil
		},

		export: func(ctx context.Context, query string, saver bulk.Saver) (int, string, error) {
			ctl, err := load(ctx, table.DefaultPageSize)
			if err != nil {
				return 0, "", err
			}
			ctl.SetQuery(query)
			ctl.ToggleAll()

			d := &bulk.Dispatcher[R]{Resource: desc, Saver: saver, Journal: c.journal}
			sum, err := d.Execute(ctx, bulk.ActionExport, ctl.Resolve())
			return sum.Count, sum.Location, err
		},

		delete: func(ctx context.Context, ids []string, confirm bulk.Confirmer) (int, error) {
			ctl, err := load(ctx, table.DefaultPageSize)
			if err != nil {
				return 0, err
			}
			for _, id := range ids {
				ctl.ToggleOne(id)
			}
			resolved := ctl.Resolve()
			if missing := missingIDs(ids, desc.Schema.IDs(resolved)); len(missing) > 0 {
				return 0, fmt.Errorf("no %s with id %s", desc.Name, strings.Join(missing, ", "))
			}

			d := &bulk.Dispatcher[R]{Resource: desc, Backend: c.client, Confirm: confirm, Journal: c.journal}
			sum, err := d.Execute(ctx, bulk.ActionDelete, resolved)
			return sum.Count, err
		},
	}
}

// missingIDs returns the entries of want not present in have, sorted.
func missingIDs(want, have []string) []string {
	found := make(map[string]bool, len(have))
	for _, id := range have {
		found[id] = true
	}
	var missing []string
	for _, id := range want {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return missing
}
