package streamjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one decoded JSON object. The decoder is schema-agnostic: values
// are string, json.Number, bool, nil, []any, or nested map[string]any.
type Record = map[string]any

// Transform is applied to each decoded record before it is returned.
// It must be pure; the decoder makes no assumptions about record shape
// beyond "object in, object out".
type Transform func(Record) Record

// ChunkError reports a chunk from the concatenation-fallback path that
// failed to parse. Chunk holds the offending substring verbatim (pre-trim)
// for diagnostics.
type ChunkError struct {
	Chunk string
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("malformed JSON chunk %q: %v", e.Chunk, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Decode parses raw into an ordered sequence of records. A nil transform
// means identity.
//
// Empty (or whitespace-only) input is not an error: single-node clusters
// legitimately produce no output, and that decodes to an empty sequence.
// A single object yields one record; an array yields its elements in array
// order and is never subjected to concatenation splitting. Anything else
// falls back to splitting on object boundaries (a '}' followed by optional
// whitespace and a '{') and parsing each chunk independently. The fallback
// is all-or-nothing: the first chunk that fails to parse aborts the whole
// decode with a ChunkError and no partial results.
func Decode(raw string, transform Transform) ([]Record, error) {
	if transform == nil {
		transform = func(r Record) Record { return r }
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []Record{}, nil
	}

	if v, ok := decodeValue(trimmed); ok {
		switch val := v.(type) {
		case map[string]any:
			return []Record{transform(val)}, nil
		case []any:
			out := make([]Record, 0, len(val))
			for i, elem := range val {
				obj, ok := elem.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("array element %d is not a JSON object", i)
				}
				out = append(out, transform(obj))
			}
			return out, nil
		}
		// Scalar top level: not a record stream. Fall through to the
		// chunk path so the error names the offending text.
	}

	out := make([]Record, 0, 2)
	for _, chunk := range splitConcatenated(trimmed) {
		var rec Record
		if err := unmarshalStrict([]byte(strings.TrimSpace(chunk)), &rec); err != nil {
			return nil, &ChunkError{Chunk: chunk, Err: err}
		}
		out = append(out, transform(rec))
	}
	return out, nil
}

// decodeValue parses s as exactly one JSON value with numbers preserved.
// Trailing garbage after the value counts as failure so that concatenated
// objects reach the fallback path.
func decodeValue(s string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return v, true
}

// unmarshalStrict decodes data into v with UseNumber and rejects trailing
// content after the first value.
func unmarshalStrict(data []byte, v *Record) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after JSON object")
	}
	return nil
}

// splitConcatenated splits s at every point where a '}' is followed, after
// zero or more whitespace characters, by a '{'. Both braces stay attached
// to their respective chunks; the whitespace between them is consumed by
// the split itself, however long it runs.
//
// The scan is purely lexical and does not track quote state, so a string
// value containing a literal "}{" would be mis-split. Corrosion's output
// never contains such values; see the decoder docs.
func splitConcatenated(s string) []string {
	var chunks []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '}' {
			continue
		}
		j := i + 1
		for j < len(s) && isSpace(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '{' {
			chunks = append(chunks, s[start:i+1])
			start = j
			i = j - 1
		}
	}
	chunks = append(chunks, s[start:])
	return chunks
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
