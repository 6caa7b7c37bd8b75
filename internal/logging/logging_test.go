package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/gexx/gexx/internal/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("team", "t1").Info("hello")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["msg"])
	require.Equal(t, "t1", entry["team"])
}

func TestNewRejectsUnknown(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"}, nil)
	require.Error(t, err)
	_, err = New(config.LogConfig{Format: "xml"}, nil)
	require.Error(t, err)
}
