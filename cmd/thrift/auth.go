package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/thrift/internal/cli"
	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/sheets"
)

func authCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd(e))

	return cmd
}

func authSheetsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize thrift to write reports to Google Sheets",
		Long: `Run the Google OAuth consent flow and store the refresh token in the
configured token file (sheets.token_file).

Requires sheets.client_id and sheets.client_secret, or GOOGLE_SHEETS_CLIENT_ID
and GOOGLE_SHEETS_CLIENT_SECRET in the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := e.settings.SheetsConfig()
			if cfg.ClientID == "" || cfg.ClientSecret == "" {
				return common.NewUserError("sheets.client_id and sheets.client_secret are required", common.ErrMissingConfig)
			}
			listen, _ := cmd.Flags().GetString("listen")

			out := cmd.OutOrStdout()
			token, err := sheets.Authenticate(cmd.Context(), sheets.OAuth2Config{
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
				TokenFile:    cfg.TokenFile,
				ListenAddr:   listen,
			}, func(url string) {
				fmt.Fprintln(out, cli.FormatInfo("Open this URL in your browser to authorize thrift:"))
				fmt.Fprintln(out, url)
			})
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess("Google Sheets authorized"))
			if cfg.TokenFile != "" {
				fmt.Fprintln(out, cli.SubtleStyle.Render("Token saved to "+cfg.TokenFile))
			} else {
				fmt.Fprintln(out, cli.FormatWarning("No token file configured; set sheets.refresh_token to:"))
				fmt.Fprintln(out, token.RefreshToken)
			}
			return nil
		},
	}

	cmd.Flags().String("listen", "localhost:8080", "Address of the local OAuth callback listener")

	return cmd
}
