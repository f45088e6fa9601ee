// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the admin password goes to the OS
// keychain. The file is JSON; comments and trailing commas are accepted.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"zentaoctl/cli/internal/endpoint"
	"zentaoctl/cli/internal/portal"
	"zentaoctl/cli/internal/xdg"
)

// Environment variables overriding file settings.
const (
	EnvBaseURL    = "ZENTAOCTL_BASE_URL"
	EnvChromePath = "ZENTAOCTL_CHROME_PATH"
	EnvAuditDSN   = "ZENTAOCTL_AUDIT_DSN"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel  string        `json:"log_level"`
	LogFormat string        `json:"log_format"`
	Operator  string        `json:"operator"`
	Portal    PortalConfig  `json:"portal"`
	Browser   BrowserConfig `json:"browser"`
	Audit     AuditConfig   `json:"audit"`
}

// PortalConfig locates the portal and tunes how results are judged.
type PortalConfig struct {
	BaseURL         string `json:"base_url"`
	ProjectListPath string `json:"project_list_path,omitempty"`
	SubmitPolicy    string `json:"submit_policy"`
	ProjectMatch    string `json:"project_match"`
}

// BrowserConfig controls the headless browser.
type BrowserConfig struct {
	ExecPath           string `json:"exec_path,omitempty"`
	UserAgent          string `json:"user_agent,omitempty"`
	Headless           bool   `json:"headless"`
	PageLoadSeconds    int    `json:"page_load_seconds"`
	ElementWaitSeconds int    `json:"element_wait_seconds"`
	SettleSeconds      int    `json:"settle_seconds"`
}

// AuditConfig selects where admin-account usage is recorded. An empty File
// selects the default log in the state dir.
type AuditConfig struct {
	File        string `json:"file,omitempty"`
	PostgresDSN string `json:"postgres_dsn,omitempty" masq:"secret"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "console",
		Portal: PortalConfig{
			SubmitPolicy: "lenient",
			ProjectMatch: "strict",
		},
		Browser: BrowserConfig{
			Headless:           true,
			PageLoadSeconds:    60,
			ElementWaitSeconds: 10,
			SettleSeconds:      2,
		},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file and applies environment overrides.
// A missing file yields defaults.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	c, err := LoadFrom(p)
	if err != nil {
		return c, err
	}
	ApplyEnv(&c, os.Getenv)
	return c, nil
}

// LoadFrom reads one config file. Fields absent from the file keep their
// default values.
func LoadFrom(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, goerr.Wrap(err, "failed to read config", goerr.V("path", path))
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return c, goerr.Wrap(err, "config is not valid JSON", goerr.V("path", path))
	}
	if err := json.Unmarshal(std, &c); err != nil {
		return c, goerr.Wrap(err, "config has unexpected fields", goerr.V("path", path))
	}
	return c, nil
}

// ApplyEnv overrides file settings with non-empty environment values.
func ApplyEnv(c *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvBaseURL)); v != "" {
		c.Portal.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvChromePath)); v != "" {
		c.Browser.ExecPath = v
	}
	if v := strings.TrimSpace(getenv(EnvAuditDSN)); v != "" {
		c.Audit.PostgresDSN = v
	}
}

// Save writes configuration atomically with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(p, c)
}

// SaveTo writes configuration to path.
func SaveTo(path string, c Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode config")
	}
	if err := atomic.WriteFile(path, bytes.NewReader(append(b, '\n'))); err != nil {
		return goerr.Wrap(err, "failed to write config", goerr.V("path", path))
	}
	return os.Chmod(path, 0o600)
}

// Endpoint builds the portal endpoint from the configured base URL.
func (c Config) Endpoint() (endpoint.Endpoint, error) {
	return endpoint.New(c.Portal.BaseURL, c.Portal.ProjectListPath)
}

// Timeouts returns the default step timeouts adjusted by the browser settings.
func (c Config) Timeouts() portal.Timeouts {
	t := portal.DefaultTimeouts()
	if c.Browser.PageLoadSeconds > 0 {
		t.PageLoad = seconds(c.Browser.PageLoadSeconds)
	}
	if c.Browser.ElementWaitSeconds > 0 {
		t.ElementWait = seconds(c.Browser.ElementWaitSeconds)
	}
	if c.Browser.SettleSeconds > 0 {
		t.Settle = seconds(c.Browser.SettleSeconds)
	}
	return t
}

// LaunchOptions returns the browser launch settings.
func (c Config) LaunchOptions() portal.LaunchOptions {
	o := portal.DefaultLaunchOptions()
	o.Headless = c.Browser.Headless
	o.ExecPath = c.Browser.ExecPath
	if c.Browser.UserAgent != "" {
		o.UserAgent = c.Browser.UserAgent
	}
	if c.Browser.PageLoadSeconds > 0 {
		o.PageLoad = seconds(c.Browser.PageLoadSeconds)
	}
	return o
}

// Policies parses the submit and project-match policies.
func (c Config) Policies() (portal.SubmitPolicy, portal.MatchPolicy, error) {
	submit, err := portal.ParseSubmitPolicy(c.Portal.SubmitPolicy)
	if err != nil {
		return submit, portal.MatchStrict, err
	}
	match, err := portal.ParseMatchPolicy(c.Portal.ProjectMatch)
	return submit, match, err
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
