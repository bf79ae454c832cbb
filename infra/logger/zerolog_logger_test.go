package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"hour": 0})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLoggerWithWriter("engine", &buf)
	l.Infof("dispatched %d regions", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "engine", line["component"])
	assert.Equal(t, "dispatched 3 regions", line["message"])
	assert.Contains(t, line, "time")
}

func TestZerologLoggerStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLoggerWithWriter("engine", &buf)
	l.Debugw("hour resolved", map[string]any{"hour": 4, "region": "AZ"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, float64(4), line["hour"])
	assert.Equal(t, "AZ", line["region"])
}
