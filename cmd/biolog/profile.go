package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or replace the body profile",
	}
	cmd.AddCommand(newProfileShowCmd(opts), newProfileSetCmd(opts))
	return cmd
}

func newProfileShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the profile with BMR and daily baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), opts, func(e env) error {
				p, err := e.svc.Profile(cmd.Context())
				if err != nil {
					return err
				}
				return printProfile(cmd, p)
			})
		},
	}
}

func newProfileSetCmd(opts *rootOptions) *cobra.Command {
	flags := &profileFlags{}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the profile and rebuild the summary",
		Long:  "Update the saved profile. Only the flags given are changed; the rest keep their saved values.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), opts, func(e env) error {
				p, err := e.svc.Profile(cmd.Context())
				if err != nil {
					return err
				}
				flags.apply(cmd, &p)
				if err := e.svc.SaveProfile(cmd.Context(), p); err != nil {
					return err
				}
				if _, err := e.svc.RefreshSummary(cmd.Context()); err != nil {
					return fmt.Errorf("profile saved, but summary refresh failed: %w", err)
				}
				return printProfile(cmd, p)
			})
		},
	}
	flags.register(cmd, tracker.DefaultProfile())
	return cmd
}

// profileFlags holds the body-data flags shared by profile set and bmr.
type profileFlags struct {
	weight, height, age float64
	sex, activity       string
}

func (f *profileFlags) register(cmd *cobra.Command, defaults tracker.Profile) {
	cmd.Flags().Float64Var(&f.weight, "weight", defaults.WeightKg, "Body weight in kg")
	cmd.Flags().Float64Var(&f.height, "height", defaults.HeightCm, "Height in cm")
	cmd.Flags().Float64Var(&f.age, "age", defaults.AgeYears, "Age in years")
	cmd.Flags().StringVar(&f.sex, "sex", string(defaults.Sex), "male or female")
	cmd.Flags().StringVar(&f.activity, "activity", string(defaults.ActivityLevel), "low, moderate or high")
}

// apply copies the flags the user set onto p.
func (f *profileFlags) apply(cmd *cobra.Command, p *tracker.Profile) {
	changed := cmd.Flags().Changed
	if changed("weight") {
		p.WeightKg = f.weight
	}
	if changed("height") {
		p.HeightCm = f.height
	}
	if changed("age") {
		p.AgeYears = f.age
	}
	if changed("sex") {
		p.Sex = balance.Sex(f.sex)
	}
	if changed("activity") {
		p.ActivityLevel = balance.ActivityLevel(f.activity)
	}
}

func printProfile(cmd *cobra.Command, p tracker.Profile) error {
	base, err := p.Baseline()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Profile: %s\nBMR: %.2f kcal\nBase metabolism: %.0f kcal/day\n", p, p.BMR(), base)
	return nil
}

// newBMRCmd computes BMR and baseline without touching the store.
func newBMRCmd() *cobra.Command {
	flags := &profileFlags{}
	cmd := &cobra.Command{
		Use:   "bmr",
		Short: "Compute BMR and daily baseline for the given body data",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tracker.DefaultProfile()
			flags.apply(cmd, &p)
			return printProfile(cmd, p)
		},
	}
	flags.register(cmd, tracker.DefaultProfile())
	return cmd
}
