package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/buildtrack/internal/cli"
	"github.com/Veraticus/buildtrack/internal/ledger"
	"github.com/Veraticus/buildtrack/internal/model"
	"github.com/Veraticus/buildtrack/internal/ofx"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

func bankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Record bank and cash movements",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Record a deposit or withdrawal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := readFlags(cmd)
			t := model.BankTransaction{
				Date:        f.date("date"),
				Type:        model.ParseTransactionType(f.str("type")),
				Amount:      f.amount("amount"),
				Mode:        f.mode("mode", model.ModeBank),
				Description: f.str("description"),
			}
			if f.err != nil {
				return f.err
			}
			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.engine.AddTransaction(cmd.Context(), t)
				if err != nil {
					return err
				}
				return printCreated(cmd.OutOrStdout(), "transaction", created.ID)
			})
		},
	}
	add.Flags().String("type", "deposit", "deposit or withdrawal")
	add.Flags().String("amount", "", "amount")
	add.Flags().String("mode", "", "cash, bank or upi")
	add.Flags().String("date", "", "date (YYYY-MM-DD, default today)")
	add.Flags().String("description", "", "description")
	_ = add.MarkFlagRequired("amount")

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a bank statement in OFX/QFX format",
		Long: `Import every transaction of an OFX/QFX statement. Transactions already
imported from the same statement are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open statement: %w", err)
			}
			defer func() { _ = file.Close() }()

			txns, err := ofx.NewParser().ParseFile(cmd.Context(), file)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app) error {
				added, err := a.engine.ImportTransactions(cmd.Context(), txns)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
					fmt.Sprintf("Imported %d of %d transactions (%d already present)", added, len(txns), len(txns)-added)))
				return err
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions with the bank and cash balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				l := a.engine.Ledger()
				var rows [][]string
				for _, t := range l.Transactions {
					rows = append(rows, []string{sheets.FormatDay(t.Date), string(t.Type), string(t.Mode), t.Description, money(t.Amount)})
				}
				if err := printTable(cmd.OutOrStdout(), []string{"Date", "Type", "Mode", "Description", "Amount"}, rows); err != nil {
					return err
				}
				return printTable(cmd.OutOrStdout(), []string{"Bank balance", "Cash balance"},
					[][]string{{money(ledger.BankBalance(l.Transactions)), money(ledger.CashBalance(l.Transactions))}})
			})
		},
	}

	cmd.AddCommand(add, importCmd, list)
	return cmd
}
