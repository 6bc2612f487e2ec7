package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueParam is the pseudo parameter name used when a module is invoked with
// a bare scalar or sequence instead of a parameter mapping, as in
// `command: uptime`. The raw value is stored under this key so that no
// invocation form is lost in flattened outputs.
const ValueParam = "__value__"

// Entry is a single key/value pair of a Mapping.
type Entry struct {
	// Key is the mapping key as written in the source file.
	Key string

	// Value is the decoded value. Concrete types are nil, string, bool,
	// int64, float64, []any, and Mapping. Template expressions remain
	// opaque strings; they are never interpolated.
	Value any
}

// Mapping is an order-preserving mapping decoded from a playbook document.
//
// Design decision: We keep our own entry slice instead of a Go map because:
//  1. Parameter order in reports must match the order in the source file
//  2. Go maps randomize iteration order, which would break reproducible output
//  3. encoding/json marshals maps with sorted keys, losing document order
type Mapping []Entry

// Get returns the value for key and whether the key is present.
func (m Mapping) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present in the mapping.
func (m Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the mapping keys in document order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, e := range m {
		keys = append(keys, e.Key)
	}
	return keys
}

// UnmarshalJSON restores a mapping from a JSON object, preserving key
// order. Stored reports pass through this when scan history is loaded
// back for comparison, so the decoded values must use the same concrete
// types the YAML decoder produces.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("mapping must be a JSON object, got %v", tok)
	}

	entries := make(Mapping, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("mapping key must be a string, got %v", keyTok)
		}

		value, err := decodeJSONValue(dec)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = entries
	return nil
}

// decodeJSONValue decodes the next JSON value from the decoder into the
// concrete types of Entry.Value. Objects become nested Mappings so that
// key order survives a round trip through storage.
func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			mapping := make(Mapping, 0)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("mapping key must be a string, got %v", keyTok)
				}
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				mapping = append(mapping, Entry{Key: key, Value: value})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return mapping, nil
		case '[':
			seq := make([]any, 0)
			for dec.More() {
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				seq = append(seq, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return seq, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	default:
		return t, nil
	}
}

// MarshalJSON serializes the mapping as a JSON object with keys in
// document order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
