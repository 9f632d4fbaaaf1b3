package streamjson

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEmptyInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty string", ""},
		{"whitespace only", "  \n\t  "},
		{"newlines", "\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Decode(tt.raw, nil)
			require.NoError(t, err)
			assert.Empty(t, recs)
			assert.NotNil(t, recs, "empty input decodes to an empty slice, not nil")
		})
	}
}

func TestDecodeSingleObject(t *testing.T) {
	recs, err := Decode(`{"a": 1}`, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, json.Number("1"), recs[0]["a"])
}

func TestDecodeArray(t *testing.T) {
	recs, err := Decode(`[{"a":1},{"b":2}]`, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, json.Number("1"), recs[0]["a"])
	assert.Equal(t, json.Number("2"), recs[1]["b"])
}

func TestDecodeArrayNeverSplit(t *testing.T) {
	// An array element whose string value contains "}{" must survive:
	// arrays short-circuit the concatenation fallback entirely.
	recs, err := Decode(`[{"a":"}{"}]`, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "}{", recs[0]["a"])
}

func TestDecodeArrayOfNonObjects(t *testing.T) {
	_, err := Decode(`[1, 2, 3]`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON object")
}

func TestDecodeConcatenatedObjects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"no whitespace", `{"a":1}{"b":2}`, 2},
		{"newline separated", "{\"a\":1}\n{\"b\":2}", 2},
		{"long whitespace run", "{\"a\":1}\n\n   {\"b\":2}", 2},
		{"three objects", `{"a":1} {"b":2} {"c":3}`, 3},
		{"nested objects", `{"a":{"x":1}}{"b":{"y":2}}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Decode(tt.raw, nil)
			require.NoError(t, err)
			assert.Len(t, recs, tt.want)
		})
	}
}

func TestDecodeConcatenatedPreservesOrder(t *testing.T) {
	recs, err := Decode("{\"a\":1}\n\n   {\"b\":2}", nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, json.Number("1"), recs[0]["a"])
	assert.Equal(t, json.Number("2"), recs[1]["b"])
}

func TestDecodeMalformedChunk(t *testing.T) {
	_, err := Decode(`{"a": invalid}`, nil)
	require.Error(t, err)

	var chunkErr *ChunkError
	require.True(t, errors.As(err, &chunkErr))
	assert.Equal(t, `{"a": invalid}`, chunkErr.Chunk)
	assert.Error(t, chunkErr.Err)
}

func TestDecodeMalformedSecondChunkIsAllOrNothing(t *testing.T) {
	recs, err := Decode(`{"a":1} {"b": nope}`, nil)
	require.Error(t, err, "a bad chunk aborts the whole decode")
	assert.Nil(t, recs, "no partial results")

	var chunkErr *ChunkError
	require.True(t, errors.As(err, &chunkErr))
	assert.Contains(t, chunkErr.Chunk, `"b"`)
}

func TestDecodeScalarTopLevel(t *testing.T) {
	_, err := Decode(`42`, nil)
	require.Error(t, err)

	var chunkErr *ChunkError
	require.True(t, errors.As(err, &chunkErr))
	assert.Equal(t, "42", chunkErr.Chunk)
}

func TestDecodeTransformAppliedInOrder(t *testing.T) {
	var seen []string
	transform := func(r Record) Record {
		for k := range r {
			seen = append(seen, k)
		}
		r["tagged"] = true
		return r
	}

	recs, err := Decode(`{"a":1}{"b":2}`, transform)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, true, recs[0]["tagged"])
	assert.Equal(t, true, recs[1]["tagged"])
}

func TestDecodeNumbersKeepPrecision(t *testing.T) {
	// 64-bit packed timestamps must not round through float64.
	recs, err := Decode(`{"last_sync_ts": 7495622871705602371}`, nil)
	require.NoError(t, err)
	n, ok := recs[0]["last_sync_ts"].(json.Number)
	require.True(t, ok)
	assert.Equal(t, "7495622871705602371", n.String())
}

func TestSplitConcatenated(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single object", `{"a":1}`, []string{`{"a":1}`}},
		{"two objects", `{"a":1}{"b":2}`, []string{`{"a":1}`, `{"b":2}`}},
		{
			"whitespace consumed by split",
			"{\"a\":1}\n\n  {\"b\":2}",
			[]string{`{"a":1}`, `{"b":2}`},
		},
		{
			"nested close brace not a boundary",
			`{"a":{"x":1}}{"b":2}`,
			[]string{`{"a":{"x":1}}`, `{"b":2}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitConcatenated(tt.in))
		})
	}
}

func TestSplitConcatenatedQuotedBraceLimitation(t *testing.T) {
	// Known limitation: the scan is lexical, not quote-aware. A "}{" inside
	// a string value mis-splits. Corrosion output never produces this; the
	// test pins the behavior so an accidental "fix" is visible.
	chunks := splitConcatenated(`{"a":"}{"}`)
	assert.Len(t, chunks, 2)
}

func TestDecodeLargeWhitespaceRun(t *testing.T) {
	raw := `{"a":1}` + strings.Repeat(" \n", 500) + `{"b":2}`
	recs, err := Decode(raw, nil)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}
