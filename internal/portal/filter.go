// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package portal

import "strings"

// FilterRecords applies the query's inclusion rule. Comparisons trim both
// sides and are otherwise exact. In condition mode each field equal to the
// "any value" sentinel matches every row.
func FilterRecords(records []Record, q Query) []Record {
	out := []Record{}
	switch q.Mode() {
	case ModeByID:
		want := strings.TrimSpace(q.RecordID)
		for _, r := range records {
			if strings.TrimSpace(r.ID) == want {
				out = append(out, r)
			}
		}
	case ModeByCondition:
		for _, r := range records {
			if fieldMatches(r.AssignedTo, q.AssignedTo) && fieldMatches(r.Solution, q.Solution) {
				out = append(out, r)
			}
		}
	default:
		out = append(out, records...)
	}
	return out
}

func fieldMatches(value, filter string) bool {
	if IsAll(filter) {
		return true
	}
	return strings.TrimSpace(value) == strings.TrimSpace(filter)
}
