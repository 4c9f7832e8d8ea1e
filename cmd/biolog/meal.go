package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

func newMealCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meal",
		Short: "Manage the meal log",
	}
	cmd.AddCommand(newMealAddCmd(opts), newMealListCmd(opts))
	return cmd
}

func newMealAddCmd(opts *rootOptions) *cobra.Command {
	var (
		in        tracker.MealInput
		describe  string
		noRefresh bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log one meal, optionally estimating nutrition from a description",
		RunE: func(cmd *cobra.Command, args []string) error {
			if describe == "" && strings.TrimSpace(in.MenuName) == "" {
				return errors.New("--name or --estimate is required")
			}
			return withService(cmd.Context(), opts, func(e env) error {
				if describe != "" {
					est, err := newEstimator(e.cfg)
					if err != nil {
						return err
					}
					guess, err := est.EstimateFromText(cmd.Context(), describe)
					if err != nil {
						return err
					}
					in.Calories, in.Protein, in.Fat, in.Carbs = guess.Calories, guess.Protein, guess.Fat, guess.Carbs
					if in.MenuName == "" {
						in.MenuName = guess.MenuName
					}
				}
				entry, err := e.svc.LogMeal(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %s: %.0f kcal (P %.1f / F %.1f / C %.1f)\n",
					entry.MenuName, entry.Day, entry.Calories, entry.Protein, entry.Fat, entry.Carbs)
				if noRefresh {
					return nil
				}
				if _, err := e.svc.RefreshSummary(cmd.Context()); err != nil {
					return fmt.Errorf("meal saved, but summary refresh failed: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.MenuName, "name", "", "Menu name")
	cmd.Flags().Float64Var(&in.Calories, "calories", 0, "Calories (kcal)")
	cmd.Flags().Float64Var(&in.Protein, "protein", 0, "Protein (g)")
	cmd.Flags().Float64Var(&in.Fat, "fat", 0, "Fat (g)")
	cmd.Flags().Float64Var(&in.Carbs, "carbs", 0, "Carbs (g)")
	cmd.Flags().StringVar(&describe, "estimate", "", "Estimate nutrition from this description")
	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "Skip rebuilding the summary")
	return cmd
}

func newMealListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the meal log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), opts, func(e env) error {
				entries, _, err := e.svc.Meals(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "DAY\tMENU\tKCAL\tPROTEIN\tFAT\tCARBS")
				for _, m := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\n",
						m.Day, m.MenuName, m.Calories, m.Protein, m.Fat, m.Carbs)
				}
				return tw.Flush()
			})
		},
	}
}
