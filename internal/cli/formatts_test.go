package cli

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clutterstack/corro-cli/internal/ntp"
)

func TestFormatTSEpoch(t *testing.T) {
	out, err := executeCommand(t, "format-ts", "0")
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01 00:00:00 UTC\n", out)
}

func TestFormatTSKnownInstant(t *testing.T) {
	packed := ntp.Encode(time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC))
	out, err := executeCommand(t, "format-ts", strconv.FormatUint(packed, 10))
	require.NoError(t, err)
	assert.Equal(t, "2024-02-03 04:05:06 UTC\n", out)
}

func TestFormatTSInvalid(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"not a number", "not-an-integer"},
		{"negative", "-42"},
		{"fractional", "1.5"},
		{"too large", "99999999999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, "format-ts", tt.arg)
			require.NoError(t, err, "format never fails outward")
			assert.Equal(t, "Invalid timestamp\n", out)
		})
	}
}

func TestFormatTSJSON(t *testing.T) {
	out, err := executeCommand(t, "format-ts", "--format", "json", "0")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "0", data["packed"])
	assert.Equal(t, "1970-01-01 00:00:00 UTC", data["formatted"])
}
