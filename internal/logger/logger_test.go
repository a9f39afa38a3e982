package logger

import (
	"bytes"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestFormatFields_SortedKeys(t *testing.T) {
	out := formatFields(Fields{"provider": "gemini", "duration_ms": int64(12), "ratio": 0.5})
	assert.Equal(t, "{duration_ms=12, provider=gemini, ratio=0.50}", out)
}

func TestFormatFields_Empty(t *testing.T) {
	assert.Equal(t, "", formatFields(nil))
}

func TestLevels(t *testing.T) {
	buf := captureLog(t)

	Info("hello", Fields{"a": 1})
	Warn("careful", nil)
	Error("broken", errors.New("boom"), Fields{"provider": "openai"})

	out := buf.String()
	assert.Contains(t, out, "[INFO] hello {a=1}")
	assert.Contains(t, out, "[WARN] careful")
	assert.Contains(t, out, "[ERROR] broken: boom {provider=openai}")
}
