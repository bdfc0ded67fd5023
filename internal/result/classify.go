package result

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind says how a payload should be presented.
type Kind string

const (
	KindEmpty          Kind = "empty"
	KindText           Kind = "text"
	KindObjectRows     Kind = "object_rows"
	KindPositionalRows Kind = "positional_rows"
)

// Classified is the outcome of Classify. Which fields are set depends on
// Kind: Text for KindText, Columns+Records for KindObjectRows and
// Columns+Tuples for KindPositionalRows.
type Classified struct {
	Kind    Kind
	Text    string
	Columns []string
	Records []any
	Tuples  []any
}

// Classify inspects a payload of unknown shape and decides how to present
// it. It never fails: anything it cannot interpret becomes text.
func Classify(raw json.RawMessage) Classified {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Classified{Kind: KindEmpty}
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return ClassifyString(s)
		}
		return ClassifyString(string(raw))
	}

	v, err := decodeOrdered(trimmed)
	if err != nil {
		return ClassifyString(string(raw))
	}
	return classifyValue(v)
}

// ClassifyString classifies a payload that arrived as a plain string. The
// string may carry JSON, tuple-list text or just a message.
func ClassifyString(s string) Classified {
	if s == "" {
		return Classified{Kind: KindEmpty}
	}

	if v, err := decodeOrdered([]byte(s)); err == nil {
		switch v.(type) {
		case []any, *Record:
			return classifyValue(v)
		}
	}

	if looksLikeTupleList(s) {
		if rows, err := ParseTupleList(s); err == nil {
			return positionalRows(toAnySlice(rows))
		}
	}

	return Classified{Kind: KindText, Text: s}
}

func classifyValue(v any) Classified {
	switch t := v.(type) {
	case nil:
		return Classified{Kind: KindEmpty}
	case []any:
		if len(t) == 0 {
			return Classified{Kind: KindEmpty}
		}
		switch first := t[0].(type) {
		case *Record:
			return Classified{
				Kind:    KindObjectRows,
				Columns: first.Keys(),
				Records: t,
			}
		case []any:
			return positionalRows(t)
		}
		return Classified{Kind: KindText, Text: prettyJSON(t)}
	case *Record:
		return Classified{Kind: KindText, Text: prettyJSON(t)}
	case string:
		return ClassifyString(t)
	default:
		return Classified{Kind: KindText, Text: fmt.Sprint(t)}
	}
}

func positionalRows(rows []any) Classified {
	first, _ := rows[0].([]any)
	cols := make([]string, len(first))
	for i := range cols {
		cols[i] = fmt.Sprintf("Column %d", i+1)
	}
	return Classified{
		Kind:    KindPositionalRows,
		Columns: cols,
		Tuples:  rows,
	}
}

func toAnySlice(rows [][]any) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

func prettyJSON(v any) string {
	b, err := marshalJSON(v, true)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
