package uploader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Result is the outcome of one request: either a decoded payload or the
// transport/parse error that prevented one.
type Result struct {
	StatusCode int
	Body       []byte
	Payload    any
	Err        error
}

// decodeResult turns a raw response into a Result.
func decodeResult(status int, body []byte) Result {
	res := Result{StatusCode: status, Body: body}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&res.Payload); err != nil {
		res.Err = &ParseError{StatusCode: status, Err: err}
		return res
	}
	if dec.More() {
		res.Err = &ParseError{StatusCode: status, Err: errors.New("trailing data after JSON value")}
		return res
	}
	if res.Payload == nil {
		res.Err = &ParseError{StatusCode: status, Err: errors.New("response body is null")}
	}
	return res
}

// ServerError returns the message of a truthy error field.
func (r Result) ServerError() (string, bool) {
	obj, ok := r.Payload.(map[string]any)
	if !ok {
		return "", false
	}
	v, ok := obj["error"]
	if !ok || !truthy(v) {
		return "", false
	}
	return stringify(v), true
}

// OK reports whether the response carried a 2xx status.
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Pretty renders the decoded payload with two-space indentation the way a
// browser's JSON.stringify(data, null, 2) does. Keys keep the order the
// server produced; strings and numbers are re-encoded from their decoded
// values rather than copied from the wire.
func (r Result) Pretty() (string, error) {
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()

	var buf bytes.Buffer
	if err := writeValue(&buf, dec, 0); err != nil {
		return "", fmt.Errorf("formatting response: %w", err)
	}
	return buf.String(), nil
}

func writeValue(buf *bytes.Buffer, dec *json.Decoder, depth int) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch t := tok.(type) {
	case json.Delim:
		return writeContainer(buf, dec, t, depth)
	case string:
		return writeString(buf, t)
	case json.Number:
		buf.WriteString(formatNumber(t))
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case nil:
		buf.WriteString("null")
	default:
		return fmt.Errorf("unexpected token %v", tok)
	}
	return nil
}

func writeContainer(buf *bytes.Buffer, dec *json.Decoder, open json.Delim, depth int) error {
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}
	buf.WriteByte(byte(open))

	n := 0
	for dec.More() {
		if n > 0 {
			buf.WriteByte(',')
		}
		newline(buf, depth+1)

		if open == '{' {
			key, err := dec.Token()
			if err != nil {
				return err
			}
			name, ok := key.(string)
			if !ok {
				return fmt.Errorf("unexpected object key %v", key)
			}
			if err := writeString(buf, name); err != nil {
				return err
			}
			buf.WriteString(": ")
		}

		if err := writeValue(buf, dec, depth+1); err != nil {
			return err
		}
		n++
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	if n > 0 {
		newline(buf, depth)
	}
	buf.WriteByte(closing)
	return nil
}

func newline(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat("  ", depth))
}

// writeString quotes s without HTML escaping. U+2028 and U+2029 are written
// literally as JSON.stringify does.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	out := strings.TrimSuffix(tmp.String(), "\n")
	out = strings.NewReplacer(`\u2028`, "\u2028", `\u2029`, "\u2029").Replace(out)
	buf.WriteString(out)
	return nil
}

// formatNumber prints n as a JavaScript number would be printed: shortest
// round-trip digits, exponent form outside [1e-6, 1e21), and null for values
// that overflow to Infinity.
func formatNumber(n json.Number) string {
	f, err := strconv.ParseFloat(n.String(), 64)
	if math.IsInf(f, 0) {
		return "null"
	}
	if err != nil {
		return n.String()
	}
	if f == 0 {
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		out := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(out, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// truthy follows the JavaScript truthiness rules for decoded JSON values.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return true
		}
		return f != 0 && !math.IsNaN(f)
	default:
		return true
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			if e != nil {
				parts[i] = stringify(e)
			}
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		return fmt.Sprint(t)
	}
}
