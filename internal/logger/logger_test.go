package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture routes the trace into a buffer and enables it for the test.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestDebug(t *testing.T) {
	buf := capture(t)
	Debug("finding %d resolved via %s", 3, "exact")
	assert.Equal(t, "[DEBUG] finding 3 resolved via exact\n", buf.String())
}

func TestWarn(t *testing.T) {
	buf := capture(t)
	Warn("persisting review result: %s", "disk full")
	assert.Equal(t, "[WARN] persisting review result: disk full\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := capture(t)
	Section("review")
	assert.Equal(t, "\n=== review ===\n", buf.String())
}

func TestSilentByDefault(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Debug("hidden")
	Warn("hidden")
	Section("hidden")

	assert.Zero(t, buf.Len(), "trace must stay quiet unless enabled")
}

func TestConcurrentTrace(t *testing.T) {
	buf := capture(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Debug("finding %d", n)
		}(i)
	}
	wg.Wait()

	assert.NotZero(t, buf.Len())
}
