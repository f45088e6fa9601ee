// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

// BrowserErrorType represents the category of a browser or navigation failure.
type BrowserErrorType int

const (
	BrowserErrorUnknown BrowserErrorType = iota
	BrowserErrorDNS
	BrowserErrorRefused
	BrowserErrorTimeout
	BrowserErrorMissingBinary
)

// ParseBrowserError categorizes a browser error message.
func ParseBrowserError(errMsg string) BrowserErrorType {
	lower := strings.ToLower(errMsg)

	if strings.Contains(lower, "executable file not found") ||
		strings.Contains(lower, "no such file or directory") ||
		(strings.Contains(lower, "exec:") && strings.Contains(lower, "not found")) {
		return BrowserErrorMissingBinary
	}
	if strings.Contains(lower, "err_name_not_resolved") || strings.Contains(lower, "no such host") {
		return BrowserErrorDNS
	}
	if strings.Contains(lower, "err_connection_refused") || strings.Contains(lower, "connection refused") {
		return BrowserErrorRefused
	}
	if strings.Contains(lower, "deadline") || strings.Contains(lower, "timeout") || strings.Contains(lower, "err_timed_out") {
		return BrowserErrorTimeout
	}
	return BrowserErrorUnknown
}

// FormatBrowserError formats a browser failure in a user-friendly way.
func FormatBrowserError(title, errMsg string) string {
	var b strings.Builder

	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(title))
	b.WriteString("\n\n")

	switch ParseBrowserError(errMsg) {
	case BrowserErrorMissingBinary:
		b.WriteString("Chrome or Chromium could not be started.\n")
		b.WriteString("Install a Chromium-based browser, or point zentaoctl at one with\n")
		b.WriteString("browser.exec_path in the config file or ZENTAOCTL_CHROME_PATH.\n")
	case BrowserErrorDNS:
		b.WriteString("The portal host name could not be resolved.\n")
		b.WriteString("Check portal.base_url, your VPN and your DNS settings.\n")
	case BrowserErrorRefused:
		b.WriteString("The portal refused the connection.\n")
		b.WriteString("Check that the portal is running and that the port in portal.base_url is right.\n")
	case BrowserErrorTimeout:
		b.WriteString("The portal did not answer in time.\n")
		b.WriteString("It may be overloaded, or the network path to it is slow.\n")
	default:
		b.WriteString("The browser session ended unexpectedly.\n")
	}

	if strings.TrimSpace(errMsg) != "" {
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(errMsg)))
	}
	return b.String()
}

// PresentBrowserError displays a formatted browser failure.
func PresentBrowserError(title, errMsg string) {
	fmt.Println()
	fmt.Println(FormatBrowserError(title, errMsg))
	fmt.Println()
}
