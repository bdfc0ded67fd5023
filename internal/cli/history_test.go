package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/yolodolo42/sqldesk/internal/client"
	"github.com/yolodolo42/sqldesk/internal/history"
)

func TestWriteHistory(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		writeHistory(&buf, nil)
		assert.Contains(t, ansi.Strip(buf.String()), "No history yet.")
	})

	t.Run("entries", func(t *testing.T) {
		var buf bytes.Buffer
		writeHistory(&buf, []history.Entry{
			{Section: "ask", Input: "how many\nusers", Success: true, CreatedAt: time.Now().Add(-2 * time.Hour)},
			{Section: "sql", Input: "SELECT * FROM nope", Error: "Invalid object name 'nope'", CreatedAt: time.Now()},
		})

		out := ansi.Strip(buf.String())
		assert.Contains(t, out, "how many users")
		assert.Contains(t, out, "2 hours ago")
		assert.Contains(t, out, "SELECT * FROM nope")
		assert.Contains(t, out, "Invalid object name 'nope'")
	})
}

func TestExamplesMarkdown(t *testing.T) {
	md := examplesMarkdown(&client.Examples{
		Examples: []client.ExampleCategory{
			{Category: "Employees", Queries: []string{"show all employees", "count employees by department"}},
		},
		Tips:     []string{"Be specific"},
		Workflow: []string{"1. Ask a question"},
		Note:     "Results depend on the schema.",
	})

	assert.Contains(t, md, "# Example questions")
	assert.Contains(t, md, "## Employees\n\n- show all employees\n- count employees by department\n")
	assert.Contains(t, md, "## Tips\n\n- Be specific\n")
	assert.Contains(t, md, "## Workflow\n\n1. Ask a question\n")
	assert.Contains(t, md, "> Results depend on the schema.")
}
