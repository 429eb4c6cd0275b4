package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Value is a loosely typed storefront field. The page sends strings, numbers
// or booleans for the same field, so a Value keeps the text form and reports
// presence the way the page treats it: "", 0, false and null are absent,
// anything else (including the string "0") is present.
type Value struct {
	text    string
	num     float64
	numeric bool
	present bool
}

// Text returns a string Value.
func Text(s string) Value {
	return Value{text: s, present: s != ""}
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{text: formatNumber(f), num: f, numeric: true, present: f != 0 && !math.IsNaN(f)}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*v = Value{}
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Text(s)
	case bytes.Equal(b, []byte("true")):
		*v = Value{text: "true", num: 1, numeric: true, present: true}
	case bytes.Equal(b, []byte("false")):
		*v = Value{text: "false", numeric: true}
	case b[0] == '{' || b[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*v = Value{text: buf.String(), present: true}
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return err
		}
		*v = Number(f)
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case !v.present && v.text == "":
		return []byte("null"), nil
	case v.numeric:
		return []byte(v.text), nil
	}
	return json.Marshal(v.text)
}

// Present reports whether the field counts as filled in.
func (v Value) Present() bool { return v.present }

// String returns the field text, or "" when the field is absent.
func (v Value) String() string {
	if !v.present {
		return ""
	}
	return v.text
}

// Or returns the field text, or fallback when the field is absent.
func (v Value) Or(fallback string) string {
	if !v.present {
		return fallback
	}
	return v.text
}

// Float coerces the field the way the storefront's Number(x) || 0 does:
// blank, non-numeric and NaN input yield 0, while "Infinity" and 0x/0o/0b
// integer literals keep their value.
func (v Value) Float() float64 {
	f := v.num
	if !v.numeric {
		f = parseNumber(v.text)
	}
	if f == 0 || math.IsNaN(f) {
		return 0
	}
	return f
}

func parseNumber(s string) float64 {
	s = strings.TrimFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == '\uFEFF' })
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if base := literalBase(s); base != 0 {
		digits := s[2:]
		if digits == "" || digits[0] == '+' || digits[0] == '-' {
			return math.NaN()
		}
		n, ok := new(big.Int).SetString(digits, base)
		if !ok {
			return math.NaN()
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return f
	}
	if strings.Trim(s, "0123456789.eE+-") != "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

func literalBase(s string) int {
	if len(s) < 2 || s[0] != '0' {
		return 0
	}
	switch s[1] {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
