// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"zentaoctl/cli/internal/config"
	"zentaoctl/cli/internal/endpoint"
	"zentaoctl/cli/internal/keychain"
	"zentaoctl/cli/internal/logging"
	"zentaoctl/cli/internal/portal"
	"zentaoctl/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	skipVerify bool
)

// configureCmd stores the portal URL, the admin credentials and the operator.
var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set the portal URL, admin account and operator name",
	Long: `The configure command prompts for the portal base URL, the shared admin account
and its password, and the name of the operator using it. The login is verified
against the portal unless --no-verify is given.

The password is stored in the OS keychain; everything else goes to the config
file. Press Enter to keep a value shown in brackets.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		km, err := keychain.GetManager()
		if err != nil {
			pterm.Error.Println("Secure storage is not available on this system.")
			pterm.Info.Println("Set " + keychain.FilePasswordEnv + " to use an encrypted file instead,")
			pterm.Info.Println("or pass the credentials through " + config.EnvAdminAccount + " and " + config.EnvAdminPassword + ".")
			return err
		}
		oldAccount, oldPassword, err := km.LoadAdmin()
		if err != nil {
			slog.Debug("stored credentials unreadable", slog.Any("error", err))
		}

		p := terminal.NewPrompter()

		rawURL, err := p.Ask("Portal URL", cfg.Portal.BaseURL)
		if err != nil {
			return err
		}
		ep, err := endpoint.New(rawURL, cfg.Portal.ProjectListPath)
		if err != nil {
			var pe *endpoint.ParseError
			if errors.As(err, &pe) {
				pterm.Error.Println(pe.Reason)
				if pe.Hint != "" {
					pterm.Info.Println(pe.Hint)
				}
				return &exitError{code: 1}
			}
			return err
		}

		account, err := p.Ask("Admin account", oldAccount)
		if err != nil {
			return err
		}
		passwordPrompt := "Admin password"
		if oldPassword != "" {
			passwordPrompt += " (Enter to keep)"
		}
		password, err := p.Secret(passwordPrompt)
		if err != nil {
			return err
		}
		if password == "" {
			password = oldPassword
		}
		operator, err := p.Ask("Operator name", cfg.Operator)
		if err != nil {
			return err
		}

		creds := portal.Credentials{Account: strings.TrimSpace(account), Password: password}
		if !creds.Configured() {
			pterm.Warning.Println("Both the admin account and its password are required.")
			return &exitError{code: 1}
		}

		if !skipVerify {
			if err := verifyLogin(ctx, cfg, ep, creds); err != nil {
				return err
			}
		}

		if err := km.SaveAdmin(creds.Account, creds.Password); err != nil {
			pterm.Error.Println(logging.PresentError("Failed to save the admin credentials securely", err))
			return &exitError{code: 1}
		}
		cfg.Portal.BaseURL = ep.Base
		cfg.Operator = strings.TrimSpace(operator)
		if err := config.Save(cfg); err != nil {
			pterm.Error.Println(logging.PresentError("Failed to save the config file", err))
			return &exitError{code: 1}
		}

		pterm.Success.Println("Configuration saved.")
		pterm.Info.Println("You're ready to run 'zentaoctl query'.")
		return nil
	},
}

// verifyLogin performs one real login with creds.
func verifyLogin(ctx context.Context, cfg config.Config, ep endpoint.Endpoint, creds portal.Credentials) error {
	startTime := time.Now()
	stop := startInlineSpinner(os.Stdout, "verifying login", spinnerFrames, 100*time.Millisecond)
	defer stop()

	s := &portal.Session{
		Launch:   cfg.LaunchOptions(),
		Endpoint: ep,
		Timeouts: cfg.Timeouts(),
		Logger:   slog.Default(),
	}
	defer s.Close()

	if err := s.Open(ctx); err != nil {
		stop()
		logging.PresentBrowserError("Could not start the browser", logging.Mask(err.Error()))
		return &exitError{code: 1}
	}
	ok, err := s.Login(ctx, creds)
	if err != nil {
		stop()
		logging.PresentBrowserError("Could not log in to the portal", logging.Mask(err.Error()))
		return &exitError{code: 1}
	}

	// Keep the spinner visible long enough to be read.
	if elapsed := time.Since(startTime); elapsed < time.Second {
		time.Sleep(time.Second - elapsed)
	}
	stop()
	if !ok {
		pterm.Error.Println("The portal rejected the admin account or password.")
		return &exitError{code: 1}
	}
	pterm.Success.Println("Login verified.")
	return nil
}

func init() {
	rootCmd.AddCommand(configureCmd)
	configureCmd.Flags().BoolVar(&skipVerify, "no-verify", false, "Save without logging in to the portal first")
}
