// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoundTrip(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))

	account, password, err := m.LoadAdmin()
	require.NoError(t, err)
	assert.Empty(t, account)
	assert.Empty(t, password)

	require.NoError(t, m.SaveAdmin("admin", "s3cret"))
	account, password, err = m.LoadAdmin()
	require.NoError(t, err)
	assert.Equal(t, "admin", account)
	assert.Equal(t, "s3cret", password)

	require.NoError(t, m.ClearAdmin())
	account, _, err = m.LoadAdmin()
	require.NoError(t, err)
	assert.Empty(t, account)

	assert.NoError(t, m.ClearAdmin())
}
