package cli

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// highlightSQL colours SQL for a terminal. Plain text is returned when
// colour is off or highlighting fails.
func highlightSQL(sql string, color bool) string {
	if !color || strings.TrimSpace(sql) == "" {
		return sql
	}
	var b strings.Builder
	if err := quick.Highlight(&b, sql, "tsql", "terminal256", "monokai"); err != nil {
		return sql
	}
	return strings.TrimRight(b.String(), "\n")
}
