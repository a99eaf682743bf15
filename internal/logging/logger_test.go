package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: FormatJSON, Out: &buf})
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("symptom", "Fever").Msg("confirmed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "confirmed", entry["message"])
	assert.Equal(t, "Fever", entry["symptom"])
	assert.Equal(t, "iatro", entry["service"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_DefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Out: &buf})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("quiet")
	assert.Empty(t, buf.String())
	logger.Warn().Msg("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: FormatJSON, Out: &buf})
	require.NoError(t, err)

	ctx := logger.WithContext(context.Background())
	FromContext(ctx).Debug().Msg("from ctx")
	assert.Contains(t, buf.String(), "from ctx")

	assert.NotNil(t, FromContext(context.Background()))
}
