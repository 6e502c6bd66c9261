package ember

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelOff, ParseLogLevel("off"))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("info"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("whatever"))
}

func TestLoggerRespectsLevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(LogLevelError)
	l.Output = &buf

	l.Info("should not appear")
	assert.Equal(t, 0, buf.Len())

	l.Error("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestLoggerOffSuppressesEverything(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(LogLevelOff)
	l.Output = &buf

	l.Error("nope")
	assert.Equal(t, 0, buf.Len())
}

func TestLoggerEmbedsMessageInTemplatedLine(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(LogLevelInfo)
	l.Output = &buf

	l.Info("hello there")
	out := buf.String()
	assert.Contains(t, out, `"level":"INFO"`)
	assert.Contains(t, out, `"message":"hello there"`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestLoggerFormattedVariants(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(LogLevelInfo)
	l.Output = &buf

	l.Infof("count=%d", 3)
	assert.Contains(t, buf.String(), "count=3")
}

func TestNextRequestIDIsSixteenHexCharsAndUnique(t *testing.T) {
	now := time.Now()
	a := nextRequestID("127.0.0.1:1234", now)
	b := nextRequestID("127.0.0.1:1234", now)

	assert.Len(t, a, 16)
	assert.Len(t, b, 16)
	assert.NotEqual(t, a, b)
}
