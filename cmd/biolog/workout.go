package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

func newWorkoutCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Manage the workout log",
	}
	cmd.AddCommand(newWorkoutAddCmd(opts), newWorkoutListCmd(opts))
	return cmd
}

func newWorkoutAddCmd(opts *rootOptions) *cobra.Command {
	var (
		in        tracker.WorkoutInput
		noRefresh bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log one workout and rebuild the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), opts, func(e env) error {
				entry, err := e.svc.LogWorkout(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %s: %.1f kcal, volume %.0f\n",
					entry.Exercise, entry.Day, entry.CaloriesBurned, entry.Volume)
				if noRefresh {
					return nil
				}
				if _, err := e.svc.RefreshSummary(cmd.Context()); err != nil {
					return fmt.Errorf("workout saved, but summary refresh failed: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Exercise, "exercise", "", "Exercise name (required)")
	cmd.Flags().Float64Var(&in.Weight, "weight", 0, "Weight per rep in kg")
	cmd.Flags().Float64Var(&in.Reps, "reps", 0, "Reps per set")
	cmd.Flags().Float64Var(&in.Sets, "sets", 0, "Number of sets")
	cmd.Flags().Float64Var(&in.DurationMinutes, "minutes", 0, "Duration in minutes")
	cmd.Flags().Float64Var(&in.MET, "met", 0, "MET value (default 6.0)")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Free-form notes")
	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "Skip rebuilding the summary")
	_ = cmd.MarkFlagRequired("exercise")
	return cmd
}

func newWorkoutListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the workout log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), opts, func(e env) error {
				entries, _, err := e.svc.Workouts(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "DAY\tEXERCISE\tWEIGHT\tREPS\tSETS\tMIN\tKCAL\tVOLUME")
				for _, w := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%g\t%.1f\t%.0f\n",
						w.Day, w.Exercise, w.Weight, w.Reps, w.Sets, w.DurationMinutes, w.CaloriesBurned, w.Volume)
				}
				return tw.Flush()
			})
		},
	}
}
