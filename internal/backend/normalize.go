package backend

import (
	"bytes"
	"encoding/json"
	"strings"
)

// answerFields are checked in order; the first present one is the answer.
var answerFields = []string{"context", "answer", "response", "message", "text"}

// NormalizeAnswer picks the display text out of an /ask response body.
//
// A field counts as present when it is not null, "", false or 0. String values
// are returned verbatim and any other JSON value as compact JSON. When none of
// the fields is present the whole body is returned as compact JSON.
func NormalizeAnswer(body []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// Not an object: a bare JSON value is still displayable.
		if !json.Valid(body) {
			return "", err
		}
		return compactJSON(body), nil
	}

	for _, name := range answerFields {
		raw, ok := fields[name]
		if !ok || !isPresent(raw) {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, nil
		}
		return compactJSON(raw), nil
	}
	return compactJSON(body), nil
}

func isPresent(raw json.RawMessage) bool {
	switch v := strings.TrimSpace(string(raw)); v {
	case "", "null", `""`, "false":
		return false
	default:
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return n != 0
		}
		return true
	}
}

func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}

// scalarString renders a JSON scalar (string or number) as text, "" otherwise.
func scalarString(raw json.RawMessage) string {
	if !isPresent(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
