package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/buildtrack/internal/cli"
	"github.com/Veraticus/buildtrack/internal/export"
	"github.com/Veraticus/buildtrack/internal/ledger"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the business dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				s := ledger.Summarize(a.engine.Ledger())
				content := fmt.Sprintf(
					"Projects:              %d active of %d\n"+
						"Billed:                %s\n"+
						"Received:              %s\n"+
						"Profit:                %s\n"+
						"Pending from clients:  %s\n"+
						"Pending to contractors: %s\n"+
						"Bank balance:          %s\n"+
						"Cash balance:          %s",
					s.ActiveProjects, s.TotalProjects,
					money(s.TotalBilled), money(s.TotalReceived), money(s.TotalProfit),
					money(s.PendingFromCustomers), money(s.PendingToContractors),
					money(s.BankBalance), money(s.CashBalance))
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Dashboard", content)); err != nil {
					return err
				}

				var rows [][]string
				for _, b := range s.RecentPendingBills {
					rows = append(rows, []string{b.BillNumber, b.ProjectName, money(ledger.BillPending(b)), string(b.Status)})
				}
				return printTable(cmd.OutOrStdout(), []string{"Bill", "Project", "Pending", "Status"}, rows)
			})
		},
	}

	cmd.AddCommand(reportPLCmd(), reportMaterialsCmd(), reportPendingCmd(), reportExportCmd())
	return cmd
}

func reportPLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pl",
		Short: "Profit and loss per project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				var rows [][]string
				for _, r := range ledger.ProjectPL(a.engine.Ledger()) {
					p := r.Project
					rows = append(rows, []string{
						p.Name, money(p.TotalBilled), money(p.TotalMaterialCost), money(p.TotalLabourCost),
						money(p.TotalOtherCost), money(r.Profit), cli.FormatPercent(r.ProfitPercent),
					})
				}
				return printTable(cmd.OutOrStdout(),
					[]string{"Project", "Billed", "Material", "Labour", "Other", "Profit", "Margin"}, rows)
			})
		},
	}
}

func reportMaterialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "Material usage per project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				var rows [][]string
				for _, pm := range ledger.MaterialUsage(a.engine.Ledger()) {
					for _, line := range pm.Lines {
						rows = append(rows, []string{
							pm.Project.Name, line.Name, cli.FormatNumber(line.Quantity) + " " + line.Unit, money(line.Total),
						})
					}
				}
				return printTable(cmd.OutOrStdout(), []string{"Project", "Material", "Quantity", "Total"}, rows)
			})
		},
	}
}

func reportPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Outstanding customer bills and contractor work",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				l := a.engine.Ledger()

				var bills [][]string
				for _, r := range ledger.CustomerPendingReport(l) {
					bills = append(bills, []string{r.Bill.BillNumber, sheets.FormatDay(r.Bill.Date), r.Bill.ProjectName, money(r.Pending)})
				}
				if err := printTable(cmd.OutOrStdout(), []string{"Bill", "Date", "Project", "Pending"}, bills); err != nil {
					return err
				}

				var works [][]string
				for _, r := range ledger.ContractorPendingReport(l) {
					works = append(works, []string{r.Work.ContractorName, r.Work.ProjectName, sheets.FormatDay(r.Work.Date), money(r.Pending)})
				}
				return printTable(cmd.OutOrStdout(), []string{"Contractor", "Project", "Date", "Pending"}, works)
			})
		},
	}
}

func reportExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every report to an Excel workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			return withApp(cmd.Context(), func(a *app) error {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				if err := export.Write(file, a.engine.Ledger()); err != nil {
					_ = file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return fmt.Errorf("failed to close %s: %w", out, err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Wrote "+out))
				return err
			})
		},
	}
	cmd.Flags().String("out", "buildtrack-report.xlsx", "output file")
	return cmd
}
