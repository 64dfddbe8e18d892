package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"amberpipe/internal/config"
	"amberpipe/internal/ipc"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <file>",
		Short: "Run the pipeline for one file and wait for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Process(path)
				if err != nil {
					return err
				}
				renderRun(cmd.OutOrStdout(), resp.Run)
				return nil
			})
		},
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var clear bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if clear {
					resp, err := client.ClearHistory()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "removed %d finished runs\n", resp.Removed)
					return nil
				}
				resp, err := client.History(statuses...)
				if err != nil {
					return err
				}
				renderHistory(cmd.OutOrStdout(), resp.Runs)
				return nil
			})
		},
	}
	historyCmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (queued, running, completed, failed)")
	historyCmd.Flags().BoolVar(&clear, "clear", false, "Remove completed and failed runs")
	return historyCmd
}

func newRulesCommand(ctx *commandContext) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "List naming rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RuleList()
				if err != nil {
					return err
				}
				renderRules(cmd.OutOrStdout(), resp.Rules)
				return nil
			})
		},
	}

	var steps string
	var category string
	addCmd := &cobra.Command{
		Use:   "add <prefix>",
		Short: "Install or replace a naming rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				rule := ipc.RuleSpec{
					Prefix:   args[0],
					Steps:    strings.Split(steps, ","),
					Category: category,
				}
				if _, err := client.RuleAdd(rule); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rule %s installed\n", args[0])
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&steps, "steps", "", "Comma-separated step list (e.g. segment,resize_square)")
	addCmd.Flags().StringVar(&category, "category", "", "Display category for the rule")
	_ = addCmd.MarkFlagRequired("steps")

	removeCmd := &cobra.Command{
		Use:   "remove <prefix>",
		Short: "Delete a naming rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.RuleRemove(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rule %s removed\n", args[0])
				return nil
			})
		},
	}

	rulesCmd.AddCommand(addCmd)
	rulesCmd.AddCommand(removeCmd)
	return rulesCmd
}
