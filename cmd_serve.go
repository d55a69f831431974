package main

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/neuroclick/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		addr      string
		autostart bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game headless behind a websocket control surface",
		Long: `Runs the session with autosave and serves /ws for clients, /metrics for
Prometheus and /healthz. The game is saved on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Addr = addr
			}
			fmt.Fprintln(c.out, banner)

			ctx := cmd.Context()
			sess, store, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(c.cfg.Addr, sess)
			if autostart {
				sess.Start()
			}

			slog.Info("starting neuroclick", "db", c.cfg.DB, "addr", c.cfg.Addr)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return sess.Run(gctx) })
			g.Go(func() error { return srv.Serve(gctx) })
			err = g.Wait()
			slog.Info("shut down")
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (env NEUROCLICK_ADDR)")
	cmd.Flags().BoolVar(&autostart, "start", false, "start automation immediately")
	return cmd
}
