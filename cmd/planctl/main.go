package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mnogodumalon/schichtplan/internal/config"
	"github.com/mnogodumalon/schichtplan/internal/export"
	"github.com/mnogodumalon/schichtplan/internal/livingapps"
	"github.com/mnogodumalon/schichtplan/internal/schedule"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "planctl",
		Short:         "Inspect and export the weekly shift plan",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPlanCmd())
	root.AddCommand(newExportCmd())
	return root
}

func loadWeek(ctx context.Context, week string) (schedule.WeekPlan, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return schedule.WeekPlan{}, fmt.Errorf("invalid configuration: %w", err)
	}

	client := livingapps.NewClient(cfg.BaseURL, cfg.Token, &http.Client{Timeout: cfg.RequestTimeout})
	loader := schedule.NewLoader(client, cfg.Collections())

	snap, err := loader.Refresh(ctx)
	if err != nil {
		return schedule.WeekPlan{}, err
	}

	weekStart := schedule.WeekOf(time.Now().UTC())
	if week != "" {
		parsed, err := schedule.ParseDate(week)
		if err != nil {
			return schedule.WeekPlan{}, fmt.Errorf("invalid --week %q: expected YYYY-MM-DD", week)
		}
		weekStart = schedule.WeekOf(parsed)
	}

	enriched := schedule.EnrichAssignments(snap.Assignments, snap.Indexes)
	return schedule.BuildWeekPlan(enriched, weekStart), nil
}

func newPlanCmd() *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the weekly shift plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadWeek(cmd.Context(), week)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Schichtplan %s\n\n", plan.Label)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "Datum\tBeginn\tEnde\tMitarbeiter\tUnternehmen\tSchichtart\tNotiz")
			for _, day := range plan.Days {
				for _, assignment := range day.Assignments {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						day.Date,
						assignment.Fields[schedule.FieldAssignmentStart],
						assignment.Fields[schedule.FieldAssignmentEnd],
						assignment.EmployeeName,
						assignment.CompanyName,
						assignment.ShiftTypeName,
						assignment.Fields[schedule.FieldAssignmentNote],
					)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "week to show, any date inside it (YYYY-MM-DD)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var week, format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the weekly shift plan to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadWeek(cmd.Context(), week)
			if err != nil {
				return err
			}

			var payload []byte
			switch strings.ToLower(format) {
			case "pdf":
				payload, err = export.WeekPlanPDF(plan)
			case "xlsx":
				payload, err = export.WeekPlanXLSX(plan)
			default:
				return fmt.Errorf("unsupported --format %q: use pdf or xlsx", format)
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("schichtplan-%s.%s", plan.WeekStart, strings.ToLower(format))
			}
			if err := os.WriteFile(out, payload, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(payload))
			return nil
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "week to export, any date inside it (YYYY-MM-DD)")
	cmd.Flags().StringVar(&format, "format", "pdf", "output format: pdf or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output file (default schichtplan-<week>.<format>)")
	return cmd
}
