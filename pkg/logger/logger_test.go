package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: "info", Format: "json", Writer: &buf})
	require.NoError(t, err)

	l.Debug("hidden")
	l.With(String("ticker", "SPY")).Info("built",
		Int("rows", 190),
		Float64("val_acc", 0.52),
		Bool("ok", true),
		Error(errors.New("boom")),
	)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "built", line["message"])
	assert.Equal(t, "SPY", line["ticker"])
	assert.Equal(t, 190.0, line["rows"])
	assert.Equal(t, 0.52, line["val_acc"])
	assert.Equal(t, true, line["ok"])
	assert.Equal(t, "boom", line["error"])
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("x", String("a", "b")) })
}
