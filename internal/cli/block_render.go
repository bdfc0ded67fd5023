package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/yolodolo42/sqldesk/internal/result"
	"github.com/yolodolo42/sqldesk/internal/ui"
)

// maxCellWidth caps a single column so one long value cannot push the rest
// of the table off screen.
const maxCellWidth = 48

// terminalText turns an escaped block field back into display text. The
// value is decoded exactly once, then any terminal control sequences that
// came from the database are stripped.
func terminalText(s string) string {
	return ansi.Strip(result.Unescape(s))
}

// renderBlock draws a result block for the terminal.
func renderBlock(width int, blk result.Block) string {
	switch blk.Kind {
	case result.BlockTable:
		return renderTable(width, blk)
	case result.BlockText:
		return terminalText(blk.Text)
	default:
		notice := blk.Notice
		if notice == "" {
			notice = result.NoRecordsNotice
		}
		return ui.NoticeStyle.Render(terminalText(notice))
	}
}

func renderTable(width int, blk result.Block) string {
	cols := len(blk.Headers)
	for _, row := range blk.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return ui.NoticeStyle.Render(result.NoRecordsNotice)
	}

	// Rows may be longer than the header; such cells keep an empty header.
	headers := make([]string, cols)
	for i := range headers {
		if i < len(blk.Headers) {
			headers[i] = truncate(terminalText(blk.Headers[i]), maxCellWidth)
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(ui.TableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return ui.TableHeaderStyle
			}
			return ui.TableCellStyle
		}).
		Headers(headers...)

	for _, row := range blk.Rows {
		cells := make([]string, cols)
		for i := 0; i < cols && i < len(row); i++ {
			cells[i] = truncate(oneLine(terminalText(row[i])), maxCellWidth)
		}
		t.Row(cells...)
	}

	out := t.String()
	if width > 0 && lipgloss.Width(out) > width {
		out = t.Width(width).String()
	}
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, w int) string {
	r := []rune(s)
	if w <= 0 || len(r) <= w {
		return s
	}
	if w <= 3 {
		return string(r[:w])
	}
	return string(r[:w-3]) + "..."
}
