package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/nstehr/neuroclick/rules"
	"github.com/spf13/cobra"
)

func (c *cli) rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List and edit automation rules",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, store, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			rs := sess.Rules()
			if len(rs) == 0 {
				fmt.Fprintln(c.out, "no rules defined")
				return nil
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tID\tCONDITION\tACTION")
			for i, r := range rs {
				fmt.Fprintf(tw, "%d\t%d\t%s %s %s\t%s\n", i+1, r.ID, r.Field, r.Operator,
					strconv.FormatFloat(r.Threshold, 'f', -1, 64), r.Action)
			}
			return tw.Flush()
		},
	}

	add := &cobra.Command{
		Use:     "add <field> <operator> <threshold> <action>",
		Short:   "Append a rule",
		Example: `  neuroclick rules add dataPoints ">=" 100 train`,
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := rules.ParseField(args[0])
			if err != nil {
				return err
			}
			op, err := rules.ParseOperator(args[1])
			if err != nil {
				return err
			}
			threshold, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("%w: threshold %q is not a number", rules.ErrInvalidRule, args[2])
			}
			action, err := rules.ParseAction(args[3])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			sess, store, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := sess.AddRule(field, op, threshold, action)
			if err != nil {
				return err
			}
			if err := sess.Save(ctx); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "added rule %d\n", r.ID)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a rule by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("rule id %q: %w", args[0], err)
			}

			ctx := cmd.Context()
			sess, store, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if !sess.RemoveRule(id) {
				return fmt.Errorf("no rule with id %d", id)
			}
			if err := sess.Save(ctx); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "removed rule %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}
