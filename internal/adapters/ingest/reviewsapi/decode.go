package reviewsapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"reviewpipe/internal/core/records"
)

// Decode parses a JSON array of objects into a record set.
// Columns follow first-seen key order; nested objects and arrays are kept as compact JSON text
func Decode(body []byte) (records.Set, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return records.Set{}, fmt.Errorf("read opening token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return records.Set{}, fmt.Errorf("expected a JSON array, got %v", tok)
	}

	set := records.New()
	for i := 0; dec.More(); i++ {
		keys, obj, err := decodeObject(dec)
		if err != nil {
			return records.Set{}, fmt.Errorf("element %d: %w", i, err)
		}
		row := make(records.Record, len(obj))
		for _, k := range keys {
			v, err := scalar(obj[k])
			if err != nil {
				return records.Set{}, fmt.Errorf("element %d field %q: %w", i, k, err)
			}
			row[k] = v
		}
		set.Append(row, keys...)
	}
	if _, err := dec.Token(); err != nil {
		return records.Set{}, fmt.Errorf("read closing token: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return records.Set{}, errors.New("unexpected data after JSON array")
	}
	return set, nil
}

// decodeObject reads one object keeping key order
func decodeObject(dec *json.Decoder) ([]string, map[string]json.RawMessage, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected an object, got %v", tok)
	}
	var keys []string
	obj := map[string]json.RawMessage{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		k, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, dup := obj[k]; !dup {
			keys = append(keys, k)
		}
		obj[k] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, obj, nil
}

func scalar(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, err
		}
		return buf.String(), nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case json.Number:
		if !strings.ContainsAny(x.String(), ".eE") {
			if n, err := x.Int64(); err == nil {
				return n, nil
			}
		}
		return x.Float64()
	default:
		return x, nil
	}
}
