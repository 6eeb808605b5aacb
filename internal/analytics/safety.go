package analytics

import "strings"

var mutatingKeywords = []string{"drop", "delete", "update", "insert", "alter", "create"}

// IsSafe is a lexical check with substring semantics. Keywords inside
// literals or identifiers such as created_at also mark a statement unsafe.
func IsSafe(statement string) bool {
	lowered := strings.ToLower(statement)
	for _, keyword := range mutatingKeywords {
		if strings.Contains(lowered, keyword) {
			return false
		}
	}
	return true
}
