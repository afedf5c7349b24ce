package fetcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	errNotCollection = errors.New("response is neither an array nor an object")
	errNoRecordList  = errors.New("object has no array field")
)

// Normalize flattens the envelope shapes the API has used over time into a
// list of raw records. An array is used as is. For an object, the first of
// "results", "data" or any other array-valued field (in document order) wins.
// An object without an array field is returned as a single record.
func Normalize(body []byte) ([]json.RawMessage, error) {
	items, _, err := normalize(body)
	return items, err
}

// normalize also reports whether the records came from a bare object rather
// than an array, which list endpoints treat as a shape error.
func normalize(body []byte) (items []json.RawMessage, bare bool, err error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, false, errNotCollection
	}

	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, false, err
		}
		if items == nil {
			items = []json.RawMessage{}
		}
		return items, false, nil
	case '{':
		return normalizeObject(body)
	default:
		return nil, false, errNotCollection
	}
}

type field struct {
	key   string
	value json.RawMessage
}

func normalizeObject(body []byte) ([]json.RawMessage, bool, error) {
	fields, err := objectFields(body)
	if err != nil {
		return nil, false, err
	}

	for _, name := range []string{"results", "data"} {
		for _, f := range fields {
			if f.key == name && isArray(f.value) {
				return normalize(f.value)
			}
		}
	}
	for _, f := range fields {
		if isArray(f.value) {
			return normalize(f.value)
		}
	}

	return []json.RawMessage{json.RawMessage(body)}, true, nil
}

// objectFields walks the top-level object with a token stream so field order
// is preserved, which a map decode would lose.
func objectFields(body []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotCollection
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		fields = append(fields, field{key: key, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
