// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zentaoctl/cli/internal/portal"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bugs.csv")
	records := []portal.Record{
		{ID: "31", Title: `Quote "here", and comma`, Status: "激活", OpenedBy: "amy", AssignedTo: "张诗婉", Solution: ""},
		{ID: "32", Title: "Slow page", Status: "已解决", OpenedBy: "amy", AssignedTo: "bob", Solution: "已解决"},
	}
	require.NoError(t, WriteCSV(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), utf8BOM))

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"BUG ID", "Bug标题", "严重程度", "创建人", "指派给", "解决方案"}, rows[0])
	assert.Equal(t, []string{"31", `Quote "here", and comma`, "激活", "amy", "张诗婉", ""}, rows[1])
}

func TestWriteCSVEmpty(t *testing.T) {
	data, err := EncodeCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, utf8BOM+strings.Join(Headers, ",")+"\n", string(data))
}
