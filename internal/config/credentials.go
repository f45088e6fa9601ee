package config

import (
	"os"
	"strings"

	zerrors "zentaoctl/cli/internal/errors"
	"zentaoctl/cli/internal/portal"
)

// Environment variables supplying admin credentials directly.
const (
	EnvAdminAccount  = "ZENTAOCTL_ADMIN_ACCOUNT"
	EnvAdminPassword = "ZENTAOCTL_ADMIN_PASSWORD"
)

// CredentialStore is where admin credentials are persisted.
type CredentialStore interface {
	LoadAdmin() (account, password string, err error)
}

// Credential sources reported by ResolveCredentials.
const (
	SourceEnv      = "environment"
	SourceKeychain = "keychain"
)

// ResolveCredentials returns the admin credentials from the environment or,
// failing that, from store. Nothing configured is a NotConfigured error.
func ResolveCredentials(store CredentialStore) (portal.Credentials, string, error) {
	return resolveCredentials(os.Getenv, store)
}

func resolveCredentials(getenv func(string) string, store CredentialStore) (portal.Credentials, string, error) {
	env := portal.Credentials{
		Account:  strings.TrimSpace(getenv(EnvAdminAccount)),
		Password: getenv(EnvAdminPassword),
	}
	if env.Configured() {
		return env, SourceEnv, nil
	}
	if store != nil {
		account, password, err := store.LoadAdmin()
		if err != nil {
			return portal.Credentials{}, "", zerrors.Wrap(zerrors.NotConfigured, "admin credentials could not be read from the keychain", err)
		}
		creds := portal.Credentials{Account: account, Password: password}
		if creds.Configured() {
			return creds, SourceKeychain, nil
		}
	}
	return portal.Credentials{}, "", zerrors.New(zerrors.NotConfigured, "admin credentials are not configured; run 'zentaoctl configure'")
}
