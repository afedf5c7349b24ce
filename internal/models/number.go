package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a float that also decodes from numeric strings, as DECIMAL
// columns are often serialized that way.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			// Blank strings are treated like null.
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*n = Number(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

func (n Number) Float() float64 { return float64(n) }

// NewNumber returns a pointer for optional fields.
func NewNumber(f float64) *Number {
	n := Number(f)
	return &n
}

// looseNumber decodes an optional coordinate-like value. Null, blank and
// non-numeric values leave it unset instead of failing the whole record.
func looseNumber(raw json.RawMessage) *Number {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
			return nil
		}
	}
	var n Number
	if err := n.UnmarshalJSON(raw); err != nil {
		return nil
	}
	if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
		return nil
	}
	return &n
}

func optional(n *Number) (float64, bool) {
	if n == nil {
		return 0, false
	}
	return float64(*n), true
}
