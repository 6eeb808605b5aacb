package analytics

import (
	"regexp"
	"strings"
)

const statementTerminator = ";"

// A fence is three backticks, optionally followed by a SQL language tag that
// ends its line or by a bare "sql" tag. Any other word after the backticks is
// statement text.
var fencePattern = regexp.MustCompile("(?i)```(?:(?:sql|sqlite3?|postgres(?:ql)?|pgsql|psql|duckdb)[ \t]*\r?\n|sql\\b)?")

// Sanitize turns raw model output into a runnable statement: fence
// delimiters are removed, surrounding whitespace trimmed and a terminator
// appended when missing. Applying it twice yields the same string.
func Sanitize(raw string) string {
	statement := raw
	for strings.Contains(statement, "```") {
		statement = fencePattern.ReplaceAllString(statement, "")
	}
	statement = strings.TrimSpace(statement)
	if !strings.HasSuffix(statement, statementTerminator) {
		statement += statementTerminator
	}
	return statement
}

func isBlankStatement(statement string) bool {
	return strings.TrimSpace(strings.TrimRight(statement, statementTerminator+" \t\r\n")) == ""
}
