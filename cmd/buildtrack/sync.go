package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/buildtrack/internal/cli"
	"github.com/Veraticus/buildtrack/internal/common"
)

func connectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect the ledger to a spreadsheet",
		Long: `Create a new spreadsheet with every sheet and header row, or attach to an
existing one with --existing. The local ledger is replaced by what the
spreadsheet holds.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			existing, _ := cmd.Flags().GetString("existing")
			return withApp(cmd.Context(), func(a *app) error {
				if existing != "" {
					if err := a.engine.ConnectExisting(cmd.Context(), existing); err != nil {
						return err
					}
					_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Connected to "+existing))
					return err
				}

				id, err := a.engine.Connect(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Created spreadsheet "+id))
				return err
			})
		},
	}
	cmd.Flags().String("existing", "", "attach to an existing spreadsheet id")
	return cmd
}

func disconnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Forget the connected spreadsheet and clear local data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return withApp(cmd.Context(), func(a *app) error {
				state := a.engine.State()
				if !force && state.Pending > 0 {
					input := cli.NewInput(cmd.InOrStdin())
					ok, err := input.Confirm(cmd.Context(), cmd.OutOrStdout(),
						fmt.Sprintf("%d changes have not reached the spreadsheet and will be lost. Disconnect?", state.Pending))
					if err != nil {
						return err
					}
					if !ok {
						return nil
					}
				}
				return a.engine.Disconnect(cmd.Context())
			})
		},
	}
	cmd.Flags().Bool("force", false, "do not ask before dropping queued changes")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the connection and sync state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				s := a.engine.State()
				connection := cli.WarningStyle.Render("not connected")
				if s.Connected {
					connection = cli.SuccessStyle.Render("connected to " + s.SpreadsheetID)
				}
				content := fmt.Sprintf("Spreadsheet:  %s\nQueued:       %d\nDatabase:     %s",
					connection, s.Pending, a.storage.Path())
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Sync status", content))
				return err
			})
		},
	}
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull the latest ledger from the spreadsheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.engine.SyncFromSheets(cmd.Context()); err != nil {
					return err
				}
				l := a.engine.Ledger()
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
					fmt.Sprintf("Synced %d projects, %d bills, %d transactions", len(l.Projects), len(l.Bills), len(l.Transactions))))
				return err
			})
		},
	}
	cmd.AddCommand(syncPushCmd())
	return cmd
}

func syncPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Send queued changes to the spreadsheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, interrupt := cli.OnInterrupt(cmd.Context(), cmd.ErrOrStderr(),
				"Unsent changes stay queued. Run: buildtrack sync push")

			return withApp(ctx, func(a *app) error {
				pending := a.engine.State().Pending
				if pending == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing to push"))
					return err
				}

				bar := progressbar.NewOptions(pending,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription("Pushing changes"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				sent, err := a.engine.FlushProgress(ctx, func(done, total int) {
					bar.ChangeMax(total)
					_ = bar.Set(done)
				})
				_ = bar.Finish()
				if err != nil && interrupt.Interrupted() {
					return common.NewUserError(fmt.Sprintf("Push stopped after %d of %d changes", sent, pending), err)
				}
				if err != nil {
					return fmt.Errorf("pushed %d of %d changes: %w", sent, pending, err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Pushed %d changes", sent)))
				return err
			})
		},
	}
}
