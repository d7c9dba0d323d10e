package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/stockroom/internal/bulk"
	"github.com/abelbrown/stockroom/internal/logging"
	"github.com/abelbrown/stockroom/internal/ui"
)

func tuiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse resources interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
}

func (c *cli) runTUI(ctx context.Context) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	profile := c.session.Profile()

	screens, err := ui.BuildScreens(ctx, ui.Deps{
		Backend:         c.client,
		Saver:           bulk.DirSaver{Dir: c.cfg.ExportDir()},
		Prefs:           c.store,
		Journal:         c.journal,
		DefaultPageSize: c.cfg.UI.PageSize,
	}, profile)
	if err != nil {
		return err
	}
	if len(screens) == 0 {
		return fmt.Errorf("role %s has no screens", profile.Role)
	}

	logging.Info("tui starting", "user", profile.Email, "role", profile.Role.String(), "screens", len(screens))
	app := ui.NewApp(profile, screens...).WithActivity(c.activity)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
