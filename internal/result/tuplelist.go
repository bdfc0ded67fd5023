package result

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxTupleDepth = 32

// SyntaxError reports where tuple-list text stopped making sense.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("tuple list: %s at offset %d", e.Msg, e.Offset)
}

// ParseTupleList parses the textual form of a list of row tuples as printed
// by the query service's database layer, e.g.
//
//	[(1, 'Ann', Decimal('10.50'), None), (2, "O'Brien", datetime.date(2024, 1, 2), True)]
//
// Single- and double-quoted strings, None/True/False, nested tuples and
// lists, and a handful of constructor literals are understood. Every top
// level element must itself be a tuple or list.
func ParseTupleList(s string) ([][]any, error) {
	p := &tupleParser{src: s}
	p.skipSpace()
	if !p.peek('[') {
		return nil, p.errorf("expected '['")
	}

	elems, err := p.parseSeq('[', ']', 0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing text")
	}
	if len(elems) == 0 {
		return nil, p.errorf("empty list")
	}

	rows := make([][]any, 0, len(elems))
	for i, e := range elems {
		row, ok := e.([]any)
		if !ok {
			return nil, &SyntaxError{Offset: 0, Msg: fmt.Sprintf("element %d is not a row", i+1)}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// looksLikeTupleList is the cheap gate in front of ParseTupleList.
func looksLikeTupleList(s string) bool {
	return strings.Contains(s, "[") && strings.Contains(s, "(")
}

type tupleParser struct {
	src string
	pos int
}

func (p *tupleParser) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *tupleParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *tupleParser) peek(c byte) bool {
	return p.pos < len(p.src) && p.src[p.pos] == c
}

// parseSeq parses a bracketed, comma separated sequence. A trailing comma
// is allowed, which also covers one-element tuples like (1,).
func (p *tupleParser) parseSeq(open, close byte, depth int) ([]any, error) {
	if depth > maxTupleDepth {
		return nil, p.errorf("nesting too deep")
	}
	if !p.peek(open) {
		return nil, p.errorf("expected %q", open)
	}
	p.pos++

	out := make([]any, 0)
	for {
		p.skipSpace()
		if p.peek(close) {
			p.pos++
			return out, nil
		}
		v, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)

		p.skipSpace()
		switch {
		case p.peek(','):
			p.pos++
		case p.peek(close):
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or %q", close)
		}
	}
}

func (p *tupleParser) parseValue(depth int) (any, error) {
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}

	c := p.src[p.pos]
	switch {
	case c == '(':
		return p.parseSeq('(', ')', depth)
	case c == '[':
		return p.parseSeq('[', ']', depth)
	case c == '\'' || c == '"':
		return p.parseString(false)
	case (c == '-' || c == '+') && p.keywordAt(p.pos+1, "inf"):
		p.pos += 4
		if c == '-' {
			return "-inf", nil
		}
		return "inf", nil
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.parseNumber()
	case isIdentStart(c):
		return p.parseIdent(depth)
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *tupleParser) parseNumber() (any, error) {
	start := p.pos
	if p.peek('-') || p.peek('+') {
		p.pos++
	}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isDigit(c) || c == '.' || c == 'e' || c == 'E' || c == '_' {
			p.pos++
			continue
		}
		if (c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E') {
			p.pos++
			continue
		}
		break
	}

	text := p.src[start:p.pos]
	lit := strings.TrimPrefix(strings.ReplaceAll(text, "_", ""), "+")
	n, ok := numberLiteral(lit)
	if !ok {
		p.pos = start
		return nil, p.errorf("bad number %q", text)
	}
	return n, nil
}

// numberLiteral keeps the literal text when it is already a valid JSON
// number and reformats forms like ".5" or "1." that JSON rejects.
func numberLiteral(lit string) (json.Number, bool) {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return "", false
	}
	if json.Valid([]byte(lit)) {
		return json.Number(lit), true
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), true
}

// parseString reads a quoted literal. The caller has already consumed any
// prefix letters; raw reports an r/R prefix.
func (p *tupleParser) parseString(raw bool) (any, error) {
	quote := p.src[p.pos]
	p.pos++

	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\' && !raw:
			if err := p.parseEscape(&b); err != nil {
				return nil, err
			}
		case c == '\\' && raw && p.pos+1 < len(p.src):
			b.WriteByte(c)
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		default:
			_, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteString(p.src[p.pos : p.pos+size])
			p.pos += size
		}
	}
	return nil, p.errorf("unterminated string")
}

func (p *tupleParser) parseEscape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.pos >= len(p.src) {
		return p.errorf("unterminated escape")
	}
	c := p.src[p.pos]
	p.pos++

	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '0':
		b.WriteByte(0)
	case 'x':
		return p.hexEscape(b, 2)
	case 'u':
		return p.hexEscape(b, 4)
	case 'U':
		return p.hexEscape(b, 8)
	case '\n':
		// line continuation
	default:
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *tupleParser) hexEscape(b *strings.Builder, n int) error {
	if p.pos+n > len(p.src) {
		return p.errorf("short \\x escape")
	}
	code, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
	if err != nil {
		return p.errorf("bad hex escape")
	}
	p.pos += n
	b.WriteRune(rune(code))
	return nil
}

// keywordAt reports whether word starts at i and is not the prefix of a
// longer name.
func (p *tupleParser) keywordAt(i int, word string) bool {
	if !strings.HasPrefix(p.src[i:], word) {
		return false
	}
	end := i + len(word)
	return end == len(p.src) || !isIdentPart(p.src[end])
}

func (p *tupleParser) readIdent() string {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// parseIdent handles keywords, prefixed strings (u'', b'', r'') and
// constructor calls like Decimal('1.5') or datetime.date(2024, 1, 2).
func (p *tupleParser) parseIdent(depth int) (any, error) {
	start := p.pos
	name := p.readIdent()

	if p.peek('\'') || p.peek('"') {
		prefix := strings.ToLower(name)
		if len(prefix) <= 2 && strings.Trim(prefix, "ubr") == "" {
			return p.parseString(strings.Contains(prefix, "r"))
		}
		return nil, p.errorf("unknown string prefix %q", name)
	}

	for p.peek('.') {
		p.pos++
		part := p.readIdent()
		if part == "" {
			return nil, p.errorf("expected name after '.'")
		}
		name += "." + part
	}

	switch name {
	case "None":
		return nil, nil
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "nan", "inf":
		// non-finite floats have no JSON number form
		return name, nil
	}

	p.skipSpace()
	if !p.peek('(') {
		return nil, p.errorf("unknown name %q", name)
	}
	return p.parseCall(name, start, depth)
}

func (p *tupleParser) parseCall(name string, start, depth int) (any, error) {
	if depth > maxTupleDepth {
		return nil, p.errorf("nesting too deep")
	}
	p.pos++ // (

	var args []any
	keywords := false
	for {
		p.skipSpace()
		if p.peek(')') {
			p.pos++
			break
		}

		// keyword argument: name=value
		save := p.pos
		if p.pos < len(p.src) && isIdentStart(p.src[p.pos]) {
			p.readIdent()
			p.skipSpace()
			if p.peek('=') {
				p.pos++
				p.skipSpace()
				keywords = true
			} else {
				p.pos = save
			}
		}

		v, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		args = append(args, v)

		p.skipSpace()
		switch {
		case p.peek(','):
			p.pos++
		case p.peek(')'):
			p.pos++
			return callLiteral(name, args, keywords, p.src[start:p.pos]), nil
		default:
			return nil, p.errorf("expected ',' or ')' in call")
		}
	}
	return callLiteral(name, args, keywords, p.src[start:p.pos]), nil
}

// callLiteral maps constructor calls onto plain values. Anything not
// recognised keeps its source text.
func callLiteral(name string, args []any, keywords bool, source string) any {
	if keywords {
		return source
	}

	switch name {
	case "Decimal", "decimal.Decimal":
		if len(args) == 1 {
			if s, ok := args[0].(string); ok {
				if n, ok := numberLiteral(s); ok {
					return n
				}
				return s
			}
			if n, ok := args[0].(json.Number); ok {
				return n
			}
		}
	case "UUID", "uuid.UUID":
		if len(args) == 1 {
			if s, ok := args[0].(string); ok {
				return s
			}
		}
	case "datetime.date", "date":
		if n, ok := intArgs(args, 3, 3); ok {
			return fmt.Sprintf("%04d-%02d-%02d", n[0], n[1], n[2])
		}
	case "datetime.datetime", "datetime":
		if n, ok := intArgs(args, 3, 7); ok {
			n = append(n, make([]int64, 7-len(n))...)
			s := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", n[0], n[1], n[2], n[3], n[4], n[5])
			if n[6] != 0 {
				s += fmt.Sprintf(".%06d", n[6])
			}
			return s
		}
	case "datetime.time", "time":
		if n, ok := intArgs(args, 1, 4); ok {
			n = append(n, make([]int64, 4-len(n))...)
			s := fmt.Sprintf("%02d:%02d:%02d", n[0], n[1], n[2])
			if n[3] != 0 {
				s += fmt.Sprintf(".%06d", n[3])
			}
			return s
		}
	}
	return source
}

func intArgs(args []any, min, max int) ([]int64, bool) {
	if len(args) < min || len(args) > max {
		return nil, false
	}
	out := make([]int64, 0, len(args))
	for _, a := range args {
		num, ok := a.(json.Number)
		if !ok {
			return nil, false
		}
		n, err := num.Int64()
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
