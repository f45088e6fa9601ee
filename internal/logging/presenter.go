// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	zerrors "zentaoctl/cli/internal/errors"
)

// PresentError renders err for the terminal. A classified error shows its
// short message; anything else shows the masked error text. action, when
// set, prefixes the line.
func PresentError(action string, err error) string {
	if err == nil {
		return ""
	}
	msg := zerrors.Message(err, "")
	if msg == "" {
		msg = Mask(err.Error())
	}
	if action == "" {
		return msg
	}
	return action + ": " + msg
}
