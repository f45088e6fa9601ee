// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package export writes query results to files.
package export

import (
	"bytes"
	"encoding/csv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/natefinch/atomic"

	"zentaoctl/cli/internal/portal"
)

// Headers are the CSV column titles, in column order.
var Headers = []string{"BUG ID", "Bug标题", "严重程度", "创建人", "指派给", "解决方案"}

// utf8BOM makes spreadsheet applications detect the encoding.
const utf8BOM = "\ufeff"

// EncodeCSV renders records as UTF-8 CSV with a byte order mark.
func EncodeCSV(records []portal.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(Headers); err != nil {
		return nil, goerr.Wrap(err, "failed to write csv header")
	}
	for _, r := range records {
		if err := w.Write([]string{r.ID, r.Title, r.Status, r.OpenedBy, r.AssignedTo, r.Solution}); err != nil {
			return nil, goerr.Wrap(err, "failed to write csv row", goerr.V("id", r.ID))
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, goerr.Wrap(err, "failed to flush csv")
	}
	return buf.Bytes(), nil
}

// WriteCSV replaces path atomically with the CSV rendering of records.
func WriteCSV(path string, records []portal.Record) error {
	data, err := EncodeCSV(records)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return goerr.Wrap(err, "failed to write csv file", goerr.V("path", path))
	}
	return nil
}
