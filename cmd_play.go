package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nstehr/neuroclick/config"
	"github.com/nstehr/neuroclick/tui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (c *cli) playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Long: `Opens the terminal UI. Logs go to NEUROCLICK_LOG_FILE when set and are
discarded otherwise, so they never draw over the game.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = io.Discard
			if c.cfg.LogFile != "" {
				f, err := os.OpenFile(c.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				w = f
			}
			logger, err := config.NewLogger(c.cfg.LogLevel, c.cfg.LogFormat, w)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx := cmd.Context()
			sess, store, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			g, gctx := errgroup.WithContext(runCtx)
			g.Go(func() error { return sess.Run(gctx) })
			g.Go(func() error {
				// Quitting the UI ends the autosave loop, which flushes.
				defer cancel()
				return tui.Run(gctx, sess)
			})
			return g.Wait()
		},
	}
}
