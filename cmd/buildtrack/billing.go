package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/buildtrack/internal/ledger"
	"github.com/Veraticus/buildtrack/internal/model"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

func billCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Raise customer bills and record what customers pay",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Raise a bill against a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := readFlags(cmd)
			b := model.CustomerBill{
				ProjectID:   f.str("project"),
				BillNumber:  f.str("number"),
				Date:        f.date("date"),
				Amount:      f.amount("amount"),
				Description: f.str("description"),
			}
			if f.err != nil {
				return f.err
			}
			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.engine.AddBill(cmd.Context(), b)
				if err != nil {
					return err
				}
				return printCreated(cmd.OutOrStdout(), "bill", created.ID)
			})
		},
	}
	add.Flags().String("project", "", "project id")
	add.Flags().String("number", "", "bill number")
	add.Flags().String("amount", "", "billed amount")
	add.Flags().String("date", "", "bill date (YYYY-MM-DD, default today)")
	add.Flags().String("description", "", "description")
	_ = add.MarkFlagRequired("project")
	_ = add.MarkFlagRequired("amount")

	pay := &cobra.Command{
		Use:   "pay BILL_ID",
		Short: "Record a customer payment against a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := readFlags(cmd)
			p := model.CustomerPayment{
				BillID:      args[0],
				Date:        f.date("date"),
				Amount:      f.amount("amount"),
				PaymentMode: f.mode("mode", model.ModeBank),
			}
			if f.err != nil {
				return f.err
			}
			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.engine.RecordCustomerPayment(cmd.Context(), p)
				if err != nil {
					return err
				}
				return printCreated(cmd.OutOrStdout(), "payment", created.ID)
			})
		},
	}
	paymentFlags(pay)

	list := &cobra.Command{
		Use:   "list",
		Short: "List bills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pendingOnly, _ := cmd.Flags().GetBool("pending")
			return withApp(cmd.Context(), func(a *app) error {
				var rows [][]string
				for _, b := range a.engine.Ledger().Bills {
					if pendingOnly && b.Status == model.StatusPaid {
						continue
					}
					rows = append(rows, []string{
						b.ID, b.BillNumber, sheets.FormatDay(b.Date), b.ProjectName,
						money(b.Amount), money(b.AmountReceived), money(ledger.BillPending(b)), string(b.Status),
					})
				}
				return printTable(cmd.OutOrStdout(),
					[]string{"ID", "Number", "Date", "Project", "Amount", "Received", "Pending", "Status"}, rows)
			})
		},
	}
	list.Flags().Bool("pending", false, "only bills not fully paid")

	cmd.AddCommand(add, pay, list)
	return cmd
}

func contractorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contractor",
		Short: "Record contractor work and payments",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Record work done by a contractor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := readFlags(cmd)
			w := model.ContractorWork{
				ProjectID:      f.str("project"),
				ContractorName: f.str("name"),
				ContractorType: model.ParseContractorType(f.str("type")),
				Date:           f.date("date"),
				WorkValue:      f.amount("value"),
				Description:    f.str("description"),
			}
			if f.err != nil {
				return f.err
			}
			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.engine.AddContractorWork(cmd.Context(), w)
				if err != nil {
					return err
				}
				return printCreated(cmd.OutOrStdout(), "contractor work", created.ID)
			})
		},
	}
	add.Flags().String("project", "", "project id")
	add.Flags().String("name", "", "contractor name")
	add.Flags().String("type", "labour", "labour or machine")
	add.Flags().String("value", "", "value of the work")
	add.Flags().String("date", "", "date (YYYY-MM-DD, default today)")
	add.Flags().String("description", "", "description")
	_ = add.MarkFlagRequired("project")
	_ = add.MarkFlagRequired("name")

	pay := &cobra.Command{
		Use:   "pay WORK_ID",
		Short: "Record a payment against contractor work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := readFlags(cmd)
			p := model.ContractorPayment{
				WorkID:      args[0],
				Date:        f.date("date"),
				Amount:      f.amount("amount"),
				PaymentMode: f.mode("mode", model.ModeCash),
			}
			if f.err != nil {
				return f.err
			}
			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.engine.RecordContractorPayment(cmd.Context(), p)
				if err != nil {
					return err
				}
				return printCreated(cmd.OutOrStdout(), "contractor payment", created.ID)
			})
		},
	}
	paymentFlags(pay)

	list := &cobra.Command{
		Use:   "list",
		Short: "List contractor work",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				var rows [][]string
				for _, w := range a.engine.Ledger().Contractors {
					rows = append(rows, []string{
						w.ID, w.ContractorName, string(w.ContractorType), w.ProjectName,
						money(w.WorkValue), money(w.AmountPaid), money(ledger.WorkPending(w)), string(w.Status),
					})
				}
				return printTable(cmd.OutOrStdout(),
					[]string{"ID", "Contractor", "Type", "Project", "Value", "Paid", "Pending", "Status"}, rows)
			})
		},
	}

	cmd.AddCommand(add, pay, list)
	return cmd
}
