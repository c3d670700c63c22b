package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)

	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	JSON(loc, map[string]any{"event": "thing_done", "status": "success"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "thing_done", entry["event"])
	assert.Equal(t, "info", entry["level"])

	ts, err := time.Parse(time.RFC3339Nano, entry["ts"].(string))
	require.NoError(t, err)
	_, offset := ts.Zone()
	assert.Equal(t, 9*60*60, offset)
}

func TestJSONLevelFromStatus(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)

	JSON(nil, map[string]any{"status": "error"})
	JSON(nil, map[string]any{"status": "error", "level": "warn"})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "error", first["level"])
	assert.Equal(t, "warn", second["level"])
}
