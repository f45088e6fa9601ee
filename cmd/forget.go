// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"zentaoctl/cli/internal/config"
	"zentaoctl/cli/internal/keychain"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var forgetLastQuery bool

// forgetCmd removes the stored admin credentials.
var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Remove the stored admin credentials",
	Long: `The forget command deletes the admin account and password from the OS keychain.
The config file and the audit log are left untouched. Credentials supplied
through environment variables are not affected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			pterm.Error.Println("Secure storage is not available on this system.")
			return err
		}
		if err := km.ClearAdmin(); err != nil {
			pterm.Error.Println("Failed to remove the admin credentials.")
			return err
		}
		if forgetLastQuery {
			if err := config.SaveLastQuery(config.DefaultLastQuery()); err != nil {
				return err
			}
		}
		pterm.Success.Println("Admin credentials have been removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forgetCmd)
	forgetCmd.Flags().BoolVar(&forgetLastQuery, "last-query", false, "Also reset the remembered query parameters")
}
