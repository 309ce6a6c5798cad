package listings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// Number is an optional numeric input that accepts a JSON number, a numeric
// string, or null/"" for absent. Form inputs on the frontend send strings.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = Number{}
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return n.parse(s)
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*n = Number{Value: f, Valid: true}
	return nil
}

func (n *Number) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*n = Number{}
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*n = Number{Value: f, Valid: true}
	return nil
}

// Ptr returns nil for an absent number.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Whole reports whether the value has no fractional part.
func (n Number) Whole() bool {
	return n.Value == math.Trunc(n.Value)
}

// CeilInt and FloorInt move a bound onto an integer column without widening
// it: rent >= 999.5 on whole dollars is rent >= 1000.
func (n Number) CeilInt() int64  { return int64(math.Ceil(n.Value)) }
func (n Number) FloorInt() int64 { return int64(math.Floor(n.Value)) }

// IntPtr truncates; callers check Whole first.
func (n Number) IntPtr() *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Value)
	return &v
}

const invalidFormat = "Invalid request format"

// decodeWithNumbers decodes a JSON body into v, naming the first of
// numberFields whose value is not a number. An empty body is accepted only
// when optional is set.
func decodeWithNumbers(w http.ResponseWriter, r *http.Request, v any, optional bool, numberFields ...string) error {
	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			return errors.New(invalidFormat)
		}
		body = bytes.TrimSpace(b)
	}
	if len(body) == 0 {
		if optional {
			return nil
		}
		return errors.New(invalidFormat)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return errors.New(invalidFormat)
	}
	for _, name := range numberFields {
		val, ok := raw[name]
		if !ok {
			continue
		}
		var n Number
		if err := n.UnmarshalJSON(val); err != nil {
			return fmt.Errorf("%s must be a number", name)
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.New(invalidFormat)
	}
	return nil
}
