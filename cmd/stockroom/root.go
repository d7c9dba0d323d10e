package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abelbrown/stockroom/internal/api"
	"github.com/abelbrown/stockroom/internal/config"
	"github.com/abelbrown/stockroom/internal/journal"
	"github.com/abelbrown/stockroom/internal/logging"
	"github.com/abelbrown/stockroom/internal/session"
	"github.com/abelbrown/stockroom/internal/store"
	"github.com/abelbrown/stockroom/internal/ui"
)

// cli is the state shared by every subcommand, filled in by setup.
type cli struct {
	configPath string
	envFile    string

	cfg      *config.Config
	store    *store.Store
	journal  *journal.Journal
	activity *journal.Ring
	session  session.Session
	client   *api.Client
}

func rootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "stockroom",
		Short:         "Warehouse records in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath(), "config file")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before the environment")

	root.AddCommand(
		tuiCmd(c),
		loginCmd(c),
		logoutCmd(c),
		listCmd(c),
		exportCmd(c),
		deleteCmd(c),
		editCmd(c),
		eventsCmd(c),
		devserverCmd(),
	)
	return root
}

// setup loads config, opens the log and the store, and restores the session.
// A missing session is not an error here; commands that need one call
// requireSession.
func (c *cli) setup() error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", c.envFile, err)
		}
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if err := logging.Init(cfg.DataDir, cfg.Log.Level); err != nil {
		return err
	}
	ui.SetTheme(cfg.UI.Theme)

	st, err := store.Open(cfg.StorePath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	c.store = st

	j, err := journal.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	c.journal = j
	c.activity = journal.NewRing(journal.DefaultRingSize)
	j.SetRing(c.activity)

	sess, err := session.Load(st)
	if err != nil && !errors.Is(err, session.ErrNotSignedIn) {
		return err
	}
	c.session = sess

	c.client = api.New(api.Options{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		RatePerSecond: cfg.API.RatePerSecond,
		Retry:         cfg.API.Retry,
		Journal:       j,
	}, sess)
	return nil
}

func (c *cli) requireSession() error {
	if !c.session.Authenticated() {
		return fmt.Errorf("%w: run 'stockroom login' first", session.ErrNotSignedIn)
	}
	return nil
}

func (c *cli) close() {
	if c.journal != nil {
		if err := c.journal.Close(); err != nil {
			logging.Warn("close journal", "err", err)
		}
		c.journal = nil
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			logging.Warn("close store", "err", err)
		}
		c.store = nil
	}
	logging.Close()
}
