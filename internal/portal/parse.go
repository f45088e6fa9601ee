// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package portal

import (
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	zerrors "zentaoctl/cli/internal/errors"
)

// recordTables are tried in order to find the record list.
var recordTables = []string{"table.table", "#bugList table", "table.main-table", "table"}

var digitRun = regexp.MustCompile(`\d+`)

// columns maps record fields to cell indices; -1 means absent.
type columns struct {
	ID, Status, Title, OpenedBy, AssignedTo, Solution int
}

// fixedColumns is the positional layout of the portal's default list view.
var fixedColumns = columns{ID: 0, Status: 1, Title: 3, OpenedBy: 4, AssignedTo: 5, Solution: 7}

const minFixedCells = 6

var headerAliases = map[string][]string{
	"id":          {"ID", "编号"},
	"title":       {"Bug标题", "标题", "Title"},
	"status":      {"状态", "Status", "级别", "严重程度", "Severity"},
	"opened_by":   {"创建者", "创建人", "由谁创建", "Opened By"},
	"assigned_to": {"指派给", "Assigned To"},
	"solution":    {"方案", "解决方案", "Resolution", "Solution"},
}

// ParseRecords extracts the records of a record-list page. The header row is
// skipped, as are rows without data cells or without a recoverable id.
func ParseRecords(html string) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, zerrors.Wrap(zerrors.Unexpected, "record list could not be parsed", err)
	}
	var table *goquery.Selection
	for _, sel := range recordTables {
		if t := doc.Find(sel).First(); t.Length() > 0 {
			table = t
			break
		}
	}
	if table == nil {
		return nil, zerrors.New(zerrors.NotFound, "record table not found")
	}

	rows := table.Find("tr")
	cols, byHeader := headerColumns(rows.First())
	records := []Record{}
	rows.Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return
		}
		if !byHeader && cells.Length() < minFixedCells {
			return
		}
		rec := Record{
			ID:         ExtractID(cellAt(cells, cols.ID)),
			Title:      cellText(cells, cols.Title),
			Status:     cellText(cells, cols.Status),
			OpenedBy:   cellText(cells, cols.OpenedBy),
			AssignedTo: cellText(cells, cols.AssignedTo),
			Solution:   cellText(cells, cols.Solution),
		}
		if rec.ID == "" {
			return
		}
		records = append(records, rec)
	})
	return records, nil
}

// headerColumns keys columns by header text. It falls back to the fixed
// layout unless the id column and at least one of assigned_to/solution are
// recognizable. A field whose header is not recognized takes its fixed index
// when no other field claimed that column.
func headerColumns(header *goquery.Selection) (columns, bool) {
	cols := columns{ID: -1, Status: -1, Title: -1, OpenedBy: -1, AssignedTo: -1, Solution: -1}
	header.ChildrenFiltered("th, td").Each(func(i int, cell *goquery.Selection) {
		text := strings.Join(strings.Fields(cell.Text()), " ")
		for field, aliases := range headerAliases {
			for _, alias := range aliases {
				if !strings.EqualFold(text, alias) {
					continue
				}
				switch field {
				case "id":
					setOnce(&cols.ID, i)
				case "title":
					setOnce(&cols.Title, i)
				case "status":
					setOnce(&cols.Status, i)
				case "opened_by":
					setOnce(&cols.OpenedBy, i)
				case "assigned_to":
					setOnce(&cols.AssignedTo, i)
				case "solution":
					setOnce(&cols.Solution, i)
				}
			}
		}
	})
	if cols.ID < 0 || (cols.AssignedTo < 0 && cols.Solution < 0) {
		return fixedColumns, false
	}
	cols.fillFrom(fixedColumns)
	return cols, true
}

func (c *columns) fields() []*int {
	return []*int{&c.ID, &c.Status, &c.Title, &c.OpenedBy, &c.AssignedTo, &c.Solution}
}

// fillFrom copies the index of every absent field from fallback unless that
// index is already taken.
func (c *columns) fillFrom(fallback columns) {
	taken := map[int]bool{}
	for _, f := range c.fields() {
		if *f >= 0 {
			taken[*f] = true
		}
	}
	fb := fallback.fields()
	for i, f := range c.fields() {
		if *f < 0 && !taken[*fb[i]] {
			*f = *fb[i]
			taken[*f] = true
		}
	}
}

func setOnce(dst *int, i int) {
	if *dst < 0 {
		*dst = i
	}
}

func cellAt(cells *goquery.Selection, i int) *goquery.Selection {
	if i < 0 || i >= cells.Length() {
		return nil
	}
	return cells.Eq(i)
}

func cellText(cells *goquery.Selection, i int) string {
	c := cellAt(cells, i)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}

// ExtractID recovers a record id from a list cell: the first all-digit
// hyphen-separated segment of the cell's link, else the cell text if it is
// all digits, else the first digit run in the text.
func ExtractID(cell *goquery.Selection) string {
	if cell == nil {
		return ""
	}
	if href, ok := cell.Find("a[href]").First().Attr("href"); ok {
		if id := IDFromHref(href); id != "" {
			return id
		}
	}
	text := strings.TrimSpace(cell.Text())
	if isDigits(text) {
		return text
	}
	return digitRun.FindString(text)
}

// IDFromHref returns the first all-digit hyphen segment of a link target,
// ignoring any query, fragment or file extension.
func IDFromHref(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	href = path.Base(href)
	href = strings.TrimSuffix(href, path.Ext(href))
	for _, seg := range strings.Split(href, "-") {
		if isDigits(seg) {
			return seg
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
