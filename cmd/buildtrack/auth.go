package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/buildtrack/internal/cli"
	"github.com/Veraticus/buildtrack/internal/common"
	"github.com/Veraticus/buildtrack/internal/config"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

const defaultTokenFile = "~/.config/buildtrack/sheets-token.json"

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Sheets",
	}

	sheetsCmd := &cobra.Command{
		Use:   "sheets",
		Short: "Sign in to Google and store a Sheets refresh token",
		Long: `Open the Google consent page, wait for the redirect and store the resulting
token. The client credentials and refresh token are written to the config
file so remote.backend=google and serve can use them.`,
		RunE: runAuthSheets,
	}
	sheetsCmd.Flags().String("client-id", "", "OAuth client id (default sheets.client_id)")
	sheetsCmd.Flags().String("client-secret", "", "OAuth client secret (default sheets.client_secret)")
	sheetsCmd.Flags().String("token-file", "", "where to store the token (default sheets.token_file)")

	cmd.AddCommand(sheetsCmd)
	return cmd
}

// firstSet returns the first non-empty value.
func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	flagID, _ := cmd.Flags().GetString("client-id")
	flagSecret, _ := cmd.Flags().GetString("client-secret")
	flagToken, _ := cmd.Flags().GetString("token-file")

	oauth := sheets.OAuth2Config{
		ClientID:     firstSet(flagID, viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID")),
		ClientSecret: firstSet(flagSecret, viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")),
		TokenFile:    config.ExpandPath(firstSet(flagToken, viper.GetString("sheets.token_file"), defaultTokenFile)),
	}
	if oauth.ClientID == "" || oauth.ClientSecret == "" {
		return common.NewUserError(
			"OAuth client credentials missing; set sheets.client_id and sheets.client_secret or pass --client-id and --client-secret",
			common.ErrMissingConfig)
	}

	out := cmd.OutOrStdout()
	oauth.ShowURL = func(url string) {
		_, _ = fmt.Fprintln(out, cli.RenderBox("Authorize Google Sheets", "Open this URL in a browser:\n\n"+url))
	}

	token, err := sheets.AuthenticateOAuth2Interactive(cmd.Context(), oauth)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	viper.Set("sheets.client_id", oauth.ClientID)
	viper.Set("sheets.client_secret", oauth.ClientSecret)
	viper.Set("sheets.refresh_token", token.RefreshToken)
	viper.Set("sheets.token_file", oauth.TokenFile)

	if err := saveConfig(); err != nil {
		_, _ = fmt.Fprintln(out, cli.FormatWarning("Could not update the config file: "+err.Error()))
		_, _ = fmt.Fprintf(out, "Add this to config.yaml:\n\nsheets:\n  refresh_token: %q\n\n", token.RefreshToken)
	}

	_, err = fmt.Fprintln(out, cli.FormatSuccess("Google Sheets authorized. Token saved to "+oauth.TokenFile))
	return err
}
