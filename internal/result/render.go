package result

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

// NoRecordsNotice is shown for empty results.
const NoRecordsNotice = "No records found."

// BlockKind identifies the presentation of a Block.
type BlockKind string

const (
	BlockNotice BlockKind = "notice"
	BlockText   BlockKind = "text"
	BlockTable  BlockKind = "table"
)

// Block is the render-safe form of a result. All strings in it are already
// escaped; consumers must not escape them again.
type Block struct {
	Kind    BlockKind  `json:"kind"`
	Notice  string     `json:"notice,omitempty"`
	Text    string     `json:"text,omitempty"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// Present runs the whole pipeline on a raw payload.
func Present(raw json.RawMessage) Block {
	return Render(Classify(raw))
}

// Render turns a classified result into a Block.
func Render(c Classified) Block {
	switch c.Kind {
	case KindText:
		return Block{Kind: BlockText, Text: Escape(c.Text)}
	case KindObjectRows:
		return Block{
			Kind:    BlockTable,
			Headers: escapeAll(c.Columns),
			Rows:    objectCells(c.Columns, c.Records),
		}
	case KindPositionalRows:
		return Block{
			Kind:    BlockTable,
			Headers: escapeAll(c.Columns),
			Rows:    positionalCells(c.Tuples),
		}
	default:
		return Block{Kind: BlockNotice, Notice: NoRecordsNotice}
	}
}

func escapeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Escape(s)
	}
	return out
}

func objectCells(cols []string, records []any) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rec, _ := r.(*Record)
		row := make([]string, len(cols))
		for i, col := range cols {
			if v, ok := rec.Get(col); ok {
				row[i] = Escape(stringify(v))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func positionalCells(tuples []any) [][]string {
	rows := make([][]string, 0, len(tuples))
	for _, t := range tuples {
		tuple, ok := t.([]any)
		if !ok {
			rows = append(rows, []string{Escape(stringify(t))})
			continue
		}
		row := make([]string, len(tuple))
		for i, v := range tuple {
			row[i] = Escape(stringify(v))
		}
		rows = append(rows, row)
	}
	return rows
}

// stringify gives the display text of a cell before escaping.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case *Record, []any:
		b, err := marshalJSON(t, false)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// HTML assembles markup for the block. Cell text was escaped by Render so
// it is inserted as is.
func (b Block) HTML() template.HTML {
	var sb strings.Builder
	switch b.Kind {
	case BlockText:
		sb.WriteString(`<pre class="result-text">`)
		sb.WriteString(b.Text)
		sb.WriteString(`</pre>`)
	case BlockTable:
		sb.WriteString(`<table class="result-table"><thead><tr>`)
		for _, h := range b.Headers {
			sb.WriteString(`<th>` + h + `</th>`)
		}
		sb.WriteString(`</tr></thead><tbody>`)
		for _, row := range b.Rows {
			sb.WriteString(`<tr>`)
			for _, cell := range row {
				sb.WriteString(`<td>` + cell + `</td>`)
			}
			sb.WriteString(`</tr>`)
		}
		sb.WriteString(`</tbody></table>`)
	default:
		notice := b.Notice
		if notice == "" {
			notice = NoRecordsNotice
		}
		sb.WriteString(`<p class="result-empty">` + notice + `</p>`)
	}
	return template.HTML(sb.String())
}

// RowCount returns the number of table rows, zero for other kinds.
func (b Block) RowCount() int {
	return len(b.Rows)
}
