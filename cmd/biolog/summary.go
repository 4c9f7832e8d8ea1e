package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
)

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var (
		refresh bool
		days    int
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the daily energy balance, newest day first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), opts, func(e env) error {
				var rows []balance.DailySummaryRow
				if refresh {
					res, err := e.svc.RefreshSummary(cmd.Context())
					if err != nil {
						return err
					}
					for _, w := range res.Warnings {
						fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
					}
					rows = res.Rows
				} else {
					var err error
					rows, err = e.svc.Summary(cmd.Context())
					if err != nil {
						return err
					}
				}
				if days > 0 && len(rows) > days {
					rows = rows[:days]
				}
				return printSummary(cmd.OutOrStdout(), rows)
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Rebuild the summary from the logs first")
	cmd.Flags().IntVar(&days, "days", 0, "Only show the newest N days")
	return cmd
}

func printSummary(out io.Writer, rows []balance.DailySummaryRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No data yet.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(balance.SummaryHeader, "\t")))
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%+d\t%.1f\t%.1f\t%.1f\n",
			r.Day, r.Intake, r.WorkoutBurn, r.BaseMetabolism, r.TotalOut, r.Balance,
			r.ProteinTotal, r.FatTotal, r.CarbTotal)
	}
	return tw.Flush()
}
