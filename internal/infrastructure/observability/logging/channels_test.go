package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelLoggerTagsChannel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewChanneledLogger(&LoggerConfig{Writer: &buf, JSONFormat: true, DefaultLevel: slog.LevelDebug})
	require.NoError(t, err)

	logger.WithOwner(ChannelResolution, "owner-1").Info("resolved", "count", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "resolution", entry["channel"])
	assert.Equal(t, "owner-1", entry["ownerId"])
	assert.Equal(t, float64(2), entry["count"])
}

func TestSetChannelLevelSuppressesLowerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewChanneledLogger(&LoggerConfig{Writer: &buf, DefaultLevel: slog.LevelDebug})
	require.NoError(t, err)

	require.NoError(t, logger.SetChannelLevel(ChannelCache, slog.LevelWarn))
	buf.Reset()

	logger.Cache().Info("hidden")
	logger.Cache().Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Equal(t, "WARN", logger.GetChannelLevels()["cache"])
}

func TestSetChannelLevelUnknownChannel(t *testing.T) {
	logger := NewNopLogger()
	assert.Error(t, logger.SetChannelLevel(Channel("nope"), slog.LevelInfo))
}

func TestSanitizeQueryTruncates(t *testing.T) {
	q := sanitizeQuery("SELECT\n\t" + strings.Repeat("x", 600))
	assert.NotContains(t, q, "\n")
	assert.True(t, strings.HasSuffix(q, "..."))
	assert.Len(t, q, 503)
}

func TestMaskOwnerID(t *testing.T) {
	assert.Equal(t, "****", MaskOwnerID("abc"))
	assert.Equal(t, "ow****23", MaskOwnerID("owner-0123"))
}
