// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain keeps the shared admin credentials in the OS credential
// store. It wraps 99designs/keyring with a thread-safe manager and a lazily
// initialized global instance.
package keychain

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
	"github.com/m-mizutani/goerr/v2"

	"zentaoctl/cli/internal/xdg"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "zentaoctl"

// Keys used for storing secrets in the OS keychain.
const (
	KeyAdminAccount  = "admin_account"
	KeyAdminPassword = "admin_password"
)

// FilePasswordEnv, when set, enables an encrypted file backend for hosts
// without a desktop keyring.
const FilePasswordEnv = "ZENTAOCTL_KEYRING_PASSWORD"

// Manager provides thread-safe access to the stored admin credentials.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager opens the OS keyring.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global manager, creating it on first use.
// A failed initialization is retried on the next call.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

func openRing() (keyring.Keyring, error) {
	cfg := keyring.Config{
		ServiceName: ServiceName,
		PassPrefix:  ServiceName,
	}
	switch runtime.GOOS {
	case "darwin":
		cfg.AllowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		cfg.AllowedBackends = []keyring.BackendType{keyring.WinCredBackend}
		cfg.WinCredPrefix = ServiceName
	default:
		cfg.AllowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
		cfg.LibSecretCollectionName = "login"
		cfg.KWalletAppID = ServiceName
		cfg.KWalletFolder = ServiceName
	}

	if pw := os.Getenv(FilePasswordEnv); pw != "" {
		dir, err := xdg.StateDir()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve keyring directory")
		}
		cfg.AllowedBackends = append(cfg.AllowedBackends, keyring.FileBackend)
		cfg.FileDir = filepath.Join(dir, "keyring")
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(pw)
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "no usable credential store; install a keyring service or set "+FilePasswordEnv)
	}
	return ring, nil
}

// SaveAdmin stores the admin account and password.
func (m *Manager) SaveAdmin(account, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ring.Set(keyring.Item{Key: KeyAdminAccount, Data: []byte(account), Label: "zentaoctl admin account"}); err != nil {
		return goerr.Wrap(err, "failed to store admin account")
	}
	if err := m.ring.Set(keyring.Item{Key: KeyAdminPassword, Data: []byte(password), Label: "zentaoctl admin password"}); err != nil {
		return goerr.Wrap(err, "failed to store admin password")
	}
	return nil
}

// LoadAdmin returns the stored credentials. Missing entries yield empty
// strings without an error.
func (m *Manager) LoadAdmin() (account, password string, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if account, err = m.get(KeyAdminAccount); err != nil {
		return "", "", err
	}
	if password, err = m.get(KeyAdminPassword); err != nil {
		return "", "", err
	}
	return account, password, nil
}

func (m *Manager) get(key string) (string, error) {
	it, err := m.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", goerr.Wrap(err, "failed to read credential store", goerr.V("key", key))
	}
	return string(it.Data), nil
}

// ClearAdmin removes the stored credentials. Missing entries are ignored.
func (m *Manager) ClearAdmin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range []string{KeyAdminAccount, KeyAdminPassword} {
		if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return goerr.Wrap(err, "failed to remove credential", goerr.V("key", key))
		}
	}
	return nil
}
