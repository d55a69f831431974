package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/nstehr/neuroclick/storage"
	"github.com/spf13/cobra"
)

func (c *cli) exportCmd() *cobra.Command {
	var toClipboard bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the stored save, or copy it to the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.OpenSQLite(c.cfg.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			blob, err := storage.Export(cmd.Context(), store)
			if err != nil {
				return err
			}
			if blob == "" {
				return errors.New("no saved game")
			}
			if toClipboard {
				if err := clipboard.WriteAll(blob); err != nil {
					return fmt.Errorf("clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "save copied to clipboard")
				return nil
			}
			fmt.Fprintln(c.out, blob)
			return nil
		},
	}
	cmd.Flags().BoolVar(&toClipboard, "clipboard", false, "copy to the clipboard instead of printing")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var fromClipboard bool
	cmd := &cobra.Command{
		Use:   "import [save]",
		Short: "Replace the stored save",
		Long: `Replaces the stored save with the given text, the clipboard, or stdin.
The text is stored as is; a save that does not parse makes the next start
begin from a fresh game.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var blob string
			switch {
			case fromClipboard:
				s, err := clipboard.ReadAll()
				if err != nil {
					return fmt.Errorf("clipboard: %w", err)
				}
				blob = s
			case len(args) == 1:
				blob = args[0]
			default:
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				blob = strings.TrimRight(string(b), "\r\n")
			}
			if strings.TrimSpace(blob) == "" {
				return errors.New("empty save")
			}

			ctx := cmd.Context()
			store, err := storage.OpenSQLite(c.cfg.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := storage.Import(ctx, store, blob); err != nil {
				return err
			}
			gs, _, err := storage.Load(ctx, store)
			if err != nil {
				fmt.Fprintf(c.out, "imported, but the save is unreadable (%v); the next game starts fresh\n", err)
				return nil
			}
			fmt.Fprintf(c.out, "imported: %s clicks, %s data points, %d rules\n",
				humanize.Comma(gs.Clicks), humanize.Comma(gs.DataPoints), len(gs.Rules))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromClipboard, "clipboard", false, "read the save from the clipboard")
	return cmd
}

func (c *cli) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				confirmed := false
				err := huh.NewConfirm().
					Title("Discard all progress?").
					Affirmative("Reset").
					Negative("Keep").
					Value(&confirmed).
					Run()
				if err != nil {
					return fmt.Errorf("confirm: %w", err)
				}
				if !confirmed {
					fmt.Fprintln(c.out, "kept")
					return nil
				}
			}

			ctx := cmd.Context()
			sess, store, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := sess.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "game reset")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}
