package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/yolodolo42/sqldesk/internal/result"
	"github.com/yolodolo42/sqldesk/internal/session"
	"github.com/yolodolo42/sqldesk/internal/ui"
)

const (
	formatTable = "table"
	formatHTML  = "html"
	formatJSON  = "json"
)

type outputOptions struct {
	format string
	width  int
	color  bool
}

// terminalInfo returns the terminal width and whether the writer is a TTY.
func terminalInfo(w io.Writer) (width int, isTTY bool) {
	width = 100
	f, ok := w.(*os.File)
	if !ok {
		return width, false
	}
	if !term.IsTerminal(int(f.Fd())) {
		return width, false
	}
	if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw >= 40 {
		width = tw
	}
	return width, true
}

func newOutputOptions(w io.Writer, format string) (outputOptions, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = formatTable
	}
	switch format {
	case formatTable, formatHTML, formatJSON:
	default:
		return outputOptions{}, fmt.Errorf("unknown format %q (want table, html or json)", format)
	}
	width, tty := terminalInfo(w)
	return outputOptions{format: format, width: width, color: tty}, nil
}

type jsonOutput struct {
	Section       string        `json:"section"`
	Title         string        `json:"title,omitempty"`
	Input         string        `json:"input,omitempty"`
	SQL           string        `json:"sql,omitempty"`
	Kind          result.Kind   `json:"kind,omitempty"`
	Block         *result.Block `json:"block,omitempty"`
	Error         string        `json:"error,omitempty"`
	ExecutionTime *float64      `json:"execution_time,omitempty"`
	ElapsedMS     int64         `json:"elapsed_ms"`
}

// writeOutput prints a finished request in the chosen format. The
// request's error, if any, is returned so the command exits non-zero.
func writeOutput(w io.Writer, out session.Output, opts outputOptions) error {
	switch opts.format {
	case formatJSON:
		j := jsonOutput{
			Section:       string(out.Section),
			Title:         out.Title,
			Input:         out.Input,
			SQL:           out.SQL,
			Kind:          out.Kind,
			ExecutionTime: out.ExecutionTime,
			ElapsedMS:     out.Elapsed.Milliseconds(),
		}
		if out.Err != nil {
			j.Error = out.Err.Error()
		} else {
			blk := out.Block
			j.Block = &blk
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(j); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	case formatHTML:
		if out.Err == nil {
			_, _ = fmt.Fprintln(w, string(out.Block.HTML()))
		}
	default:
		if out.Err == nil {
			_, _ = fmt.Fprintln(w, formatTerminal(out, opts))
		}
	}
	return out.Err
}

// formatTerminal lays out title, SQL, result and timing for a terminal.
func formatTerminal(out session.Output, opts outputOptions) string {
	var b strings.Builder
	if out.Title != "" && out.Section != session.SectionAsk && out.Section != session.SectionSQL {
		b.WriteString(ui.SectionStyle.Render(out.Title))
		b.WriteString("\n")
	}
	if out.SQL != "" && out.Section == session.SectionSQL {
		b.WriteString(highlightSQL(out.SQL, opts.color))
		b.WriteString("\n\n")
	}
	if out.Err != nil {
		b.WriteString(ui.ErrorStyle.Render(ui.SymbolCross + " " + out.Err.Error()))
	} else {
		body := renderBlock(opts.width, out.Block)
		if out.Section == session.SectionAsk && out.Block.Kind == result.BlockText {
			body = highlightSQL(body, opts.color)
		}
		b.WriteString(body)
	}
	if meta := metaLine(out); meta != "" {
		b.WriteString("\n")
		b.WriteString(ui.MetaStyle.Render(meta))
	}
	return b.String()
}

func metaLine(out session.Output) string {
	var parts []string
	if n := out.Block.RowCount(); n > 0 && out.Err == nil {
		noun := "rows"
		if n == 1 {
			noun = "row"
		}
		parts = append(parts, humanize.Comma(int64(n))+" "+noun)
	}
	if out.ExecutionTime != nil {
		parts = append(parts, "executed in "+humanize.Ftoa(*out.ExecutionTime)+"s")
	}
	if out.Elapsed > 0 {
		parts = append(parts, "round trip "+out.Elapsed.Round(time.Millisecond).String())
	}
	return strings.Join(parts, " "+ui.SymbolDot+" ")
}
