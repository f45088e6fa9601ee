package cmd

import (
	"log/slog"
	"os"
	"strings"

	"zentaoctl/cli/internal/config"
	"zentaoctl/cli/internal/keychain"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// statusCmd shows what zentaoctl would use for the next operation.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured portal, account and last query",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var store config.CredentialStore
		if km, err := keychain.GetManager(); err == nil {
			store = km
		} else {
			slog.Debug("keychain unavailable", slog.Any("error", err))
		}
		account := pterm.NewStyle(pterm.FgYellow).Sprint("not configured")
		if creds, source, err := config.ResolveCredentials(store); err == nil {
			account = maskAccount(creds.Account) + " (" + source + ")"
		}

		portalURL := cfg.Portal.BaseURL
		if ep, err := cfg.Endpoint(); err == nil {
			portalURL = ep.Base
		} else if portalURL == "" {
			portalURL = pterm.NewStyle(pterm.FgYellow).Sprint("not configured")
		}
		operator := cfg.Operator
		if operator == "" {
			operator = pterm.NewStyle(pterm.FgYellow).Sprint("not set")
		}

		rows := pterm.TableData{
			{"Portal", portalURL},
			{"Admin account", account},
			{"Operator", operator},
			{"Submit policy", cfg.Portal.SubmitPolicy},
			{"Project match", cfg.Portal.ProjectMatch},
		}
		if dsn := strings.TrimSpace(cfg.Audit.PostgresDSN); dsn != "" {
			rows = append(rows, []string{"Audit database", "configured"})
		}
		if q, err := config.LoadLastQuery(); err == nil && q.ProjectName != "" {
			rows = append(rows, []string{"Last query", q.ProjectName + " / " + describeQuery(q)})
		}
		if p, err := config.Path(); err == nil {
			if _, err := os.Stat(p); err == nil {
				rows = append(rows, []string{"Config file", p})
			}
		}
		return pterm.DefaultTable.WithData(rows).Render()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
