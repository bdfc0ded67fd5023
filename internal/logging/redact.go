package logging

import (
	"encoding/json"
	"regexp"
	"strings"
)

const redacted = "***REDACTED***"

var redactKeys = map[string]struct{}{
	"password":      {},
	"api_key":       {},
	"apikey":        {},
	"token":         {},
	"access_token":  {},
	"refresh_token": {},
	"authorization": {},
	"secret":        {},
}

// passwordLiteral matches the quoted value after PASSWORD or PWD, as in
// CREATE LOGIN ... WITH PASSWORD = 'x' or a connection string.
var passwordLiteral = regexp.MustCompile(`(?i)\b(password|pwd)(\s*=\s*)('(?:[^']|'')*'|"[^"]*"|[^\s;,)]+)`)

// RedactSQL masks password literals in a statement before it is logged or
// stored.
func RedactSQL(s string) string {
	return passwordLiteral.ReplaceAllString(s, "${1}${2}'"+redacted+"'")
}

// RedactJSON masks secret-looking keys in a JSON document and password
// literals inside its strings. Input that is not JSON only has its password
// literals masked.
func RedactJSON(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return s
	}

	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return RedactSQL(s)
	}

	b, err := json.Marshal(redactValue(v))
	if err != nil {
		return RedactSQL(s)
	}
	return string(b)
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			if _, ok := redactKeys[strings.ToLower(k)]; ok {
				out[k] = redacted
				continue
			}
			out[k] = redactValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = redactValue(t[i])
		}
		return out
	case string:
		return RedactSQL(t)
	default:
		return v
	}
}
