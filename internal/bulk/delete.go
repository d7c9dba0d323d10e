package bulk

import (
	"context"
	"fmt"
	"strings"

	"github.com/abelbrown/stockroom/internal/api"
	"github.com/abelbrown/stockroom/internal/journal"
	"github.com/abelbrown/stockroom/internal/logging"
	"github.com/abelbrown/stockroom/internal/resource"
)

func (d *Dispatcher[R]) delete(ctx context.Context, resolved []R) (Summary[R], error) {
	sum := Summary[R]{Action: ActionDelete}

	confirm := d.Confirm
	if confirm == nil {
		confirm = AlwaysConfirm
	}
	prompt := fmt.Sprintf("Delete %d %s?", len(resolved), d.Resource.Title)
	ok, err := confirm.Confirm(ctx, prompt)
	if err != nil {
		return sum, err
	}
	if !ok {
		return sum, ErrCancelled
	}

	ids := make([]string, len(resolved))
	for i, r := range resolved {
		ids[i] = d.Resource.Schema.ID(r)
	}

	var csrf string
	if d.Resource.NeedsCSRF {
		csrf, err = d.Backend.CSRFToken(ctx)
		if err != nil {
			return sum, &api.ActionError{Action: "delete", Err: err}
		}
	}
	if err := d.Backend.BatchDelete(ctx, d.Resource.Endpoint, ids, csrf); err != nil {
		journal.Emit(d.Journal, journal.Event{Kind: journal.KindDelete, Resource: d.Resource.Name, Count: len(ids), Err: err.Error()})
		return sum, err
	}
	sum.Count = len(ids)
	logging.Info("deleted", "resource", d.Resource.Name, "count", len(ids))
	journal.Emit(d.Journal, journal.Event{Kind: journal.KindDelete, Resource: d.Resource.Name, Count: len(ids),
		Msg: "ids " + strings.Join(ids, ",")})

	records, err := resource.Fetch(ctx, d.Backend, d.Resource)
	if err != nil {
		return sum, fmt.Errorf("refetch after delete: %w", err)
	}
	sum.Records = records
	sum.Refetched = true
	return sum, nil
}
