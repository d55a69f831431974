package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nstehr/neuroclick/config"
	"github.com/nstehr/neuroclick/session"
	"github.com/nstehr/neuroclick/storage"
	"github.com/spf13/cobra"
)

const banner = `
 _   _                       ____ _ _      _
| \ | | ___ _   _ _ __ ___  / ___| (_) ___| | __
|  \| |/ _ \ | | | '__/ _ \| |   | | |/ __| |/ /
| |\  |  __/ |_| | | | (_) | |___| | | (__|   <
|_| \_|\___|\__,_|_|  \___/ \____|_|_|\___|_|\_\

Rule-Driven Incremental Intelligence`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// cli carries configuration from the root command to its subcommands.
type cli struct {
	cfg config.Config
	out io.Writer
}

func newRootCmd() *cobra.Command {
	c := &cli{out: os.Stdout}
	var (
		db        string
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:           "neuroclick",
		Short:         "An incremental clicker game with if-then automation rules",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.DB = db
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			c.cfg = cfg
			c.out = cmd.OutOrStdout()

			// play owns the terminal; it installs its own logger.
			if cmd.Name() == "play" {
				return nil
			}
			logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&db, "db", "", "path to the save database (env NEUROCLICK_DB)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (env NEUROCLICK_LOG_LEVEL)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "text or json (env NEUROCLICK_LOG_FORMAT)")

	root.AddCommand(
		c.serveCmd(),
		c.playCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.rulesCmd(),
		c.resetCmd(),
	)
	return root
}

// openSession opens the configured database and restores a session from it.
// The caller closes the returned store.
func (c *cli) openSession(ctx context.Context) (*session.Session, storage.Store, error) {
	store, err := storage.OpenSQLite(c.cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return session.New(ctx, store), store, nil
}
