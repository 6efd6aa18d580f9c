package templify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DecodeJSONContext decodes a JSON document into a Value tree: object ->
// Mapping (insertion order preserved), array -> Sequence, number ->
// Integer when spelled with no fraction or exponent else Decimal
// (preserving the spelled scale), boolean -> Bool, null -> Null, string
// -> String.
//
// Grounded on pongo2's Context (a plain map consumed wholesale as template
// data) generalized to templify's typed Value tree. Decoding walks the
// token stream directly (rather than Decode into map[string]any) for two
// reasons: UseNumber() preserves a number's original spelling so "1250.50"
// keeps its trailing zero instead of collapsing through float64, and a
// token-level walk is the only way to keep a JSON object's key order,
// since map[string]any is unordered by construction.
func DecodeJSONContext(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("templify: decode json data context: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("templify: decode json data context: trailing data after top-level value")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return jsonTokenToValue(dec, tok)
}

func jsonTokenToValue(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return jsonNumberToValue(t), nil
	case string:
		return NewString(t), nil
	case json.Delim:
		switch t {
		case '[':
			return decodeJSONArray(dec)
		case '{':
			return decodeJSONObject(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return nil, fmt.Errorf("unexpected json token %T", tok)
	}
}

func decodeJSONArray(dec *json.Decoder) (*Value, error) {
	var items []*Value
	for dec.More() {
		v, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, err
	}
	return NewSequence(items), nil
}

func decodeJSONObject(dec *json.Decoder) (*Value, error) {
	om := orderedmap.New[string, *Value]()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string object key, got %T", keyTok)
		}
		val, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		om.Set(key, val)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}
	return NewMapping(om), nil
}

// jsonNumberToValue tells Integer from Decimal by how the number was
// spelled in source text, not by its numeric value: "3.0" stays a Decimal
// with scale 1 even though it equals the integer 3, matching
// ParseDecimal's scale-exact contract. An exponent shifts the mantissa's
// scale, so "1.5e2" becomes the Decimal 150 and "1e-3" the Decimal 0.001.
func jsonNumberToValue(n json.Number) *Value {
	s := string(n)
	if e := strings.IndexAny(s, "eE"); e >= 0 {
		d, ok := ParseDecimal(s[:e])
		exp, err := strconv.Atoi(s[e+1:])
		if !ok || err != nil {
			return Null
		}
		d.scale -= int32(exp)
		return NewDecimal(d)
	}
	for _, r := range s {
		if r == '.' || r == 'e' || r == 'E' {
			if d, ok := ParseDecimal(s); ok {
				return NewDecimal(d)
			}
			return Null
		}
	}
	if i, err := n.Int64(); err == nil {
		return NewInteger(i)
	}
	if d, ok := ParseDecimal(s); ok {
		return NewDecimal(d)
	}
	return Null
}
