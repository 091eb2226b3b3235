package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedAdapter(t *testing.T, level logrus.Level) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusAdapterFromLogger(l), &buf
}

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
		expectJSON  bool
	}{
		{"debug text", "debug", "text", logrus.DebugLevel, false},
		{"info json", "info", "json", logrus.InfoLevel, true},
		{"uppercase level", "WARN", "text", logrus.WarnLevel, false},
		{"invalid level defaults to info", "loud", "text", logrus.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogrusAdapterWithOutput(tt.level, tt.format, &buf)

			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.Logrus().Level)

			_, isJSON := adapter.Logrus().Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	logger := NewLogrusAdapterFromLogger(nil)
	adapter, ok := logger.(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.Logrus())
}

func TestLogrusAdapter_LevelsAndFields(t *testing.T) {
	logger, buf := newBufferedAdapter(t, logrus.DebugLevel)

	logger.Debug("reading container", F(FieldContainer, "xlsx"))
	logger.Info("resolved columns", F(FieldSource, "bbva"))
	logger.Warn("positional fallback", F(FieldRole, "amount"))
	logger.Error("conversion failed", F(FieldReason, "no columns"))

	out := buf.String()
	for _, want := range []string{
		"reading container", "container=xlsx",
		"resolved columns", "source=bbva",
		"positional fallback", "role=amount",
		"conversion failed", "reason=",
	} {
		assert.Contains(t, out, want)
	}
}

func TestLogrusAdapter_ChainedContext(t *testing.T) {
	logger, buf := newBufferedAdapter(t, logrus.InfoLevel)

	logger.
		WithField(FieldSource, "santander").
		WithFields(F(FieldRow, 12), F(FieldColumn, "Importe")).
		WithError(errors.New("bad amount")).
		Error("row dropped")

	out := buf.String()
	assert.Contains(t, out, "row dropped")
	assert.Contains(t, out, "source=santander")
	assert.Contains(t, out, "row=12")
	assert.Contains(t, out, "Importe")
	assert.Contains(t, out, "bad amount")
}

func TestLogrusAdapter_RespectsLevel(t *testing.T) {
	logger, buf := newBufferedAdapter(t, logrus.WarnLevel)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConvertFields(t *testing.T) {
	fields := convertFields([]Field{F("a", 1), F("b", "two")})
	assert.Len(t, fields, 2)
	assert.Equal(t, 1, fields["a"])
	assert.Equal(t, "two", fields["b"])

	assert.Empty(t, convertFields(nil))
}

func TestLogrusAdapter_ImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
