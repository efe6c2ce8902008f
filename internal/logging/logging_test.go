package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup("info", FormatJSON, &buf))
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	log := For("snapshot")
	log.Debug().Msg("hidden")
	log.Info().Int("rules", 3).Msg("table loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "exactly one JSON line expected, got %q", buf.String())
	assert.Equal(t, "snapshot", entry["component"])
	assert.Equal(t, "table loaded", entry["message"])
	assert.EqualValues(t, 3, entry["rules"])
}

func TestSetup_Errors(t *testing.T) {
	assert.Error(t, Setup("loud", FormatJSON, &bytes.Buffer{}))
	assert.Error(t, Setup("info", "xml", &bytes.Buffer{}))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}

func TestVerbosityLevel(t *testing.T) {
	assert.Equal(t, "debug", VerbosityLevel(false, true))
	assert.Equal(t, "error", VerbosityLevel(true, false))
	assert.Equal(t, "warn", VerbosityLevel(false, false))
}
