package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// Decimal is an exact amount that serializes as a bare JSON number.
type Decimal struct {
	decimal.Decimal
}

func NewDecimal(d decimal.Decimal) *Decimal {
	return &Decimal{Decimal: d}
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.Decimal.String()), nil
}

// Identifier holds a server-assigned id that may arrive as a JSON number
// or a JSON string. It is re-encoded as the same JSON kind it came in as.
type Identifier struct {
	value   string
	numeric bool
}

// NewIdentifier returns a string identifier.
func NewIdentifier(v string) *Identifier {
	return &Identifier{value: v}
}

func (id Identifier) String() string {
	return id.value
}

func (id Identifier) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

func (id *Identifier) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = Identifier{value: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*id = Identifier{value: n.String(), numeric: true}
	return nil
}

func decodeMap(m map[string]any, dst any) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}

func encodeMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	out, err := DecodeObject(raw)
	if err != nil {
		return nil
	}
	return out
}

// DecodeObject decodes a single JSON object. Numbers are kept as
// json.Number so ids and amounts reach Identifier and Decimal unrounded.
func DecodeObject(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("JSON value is not an object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	return out, nil
}
