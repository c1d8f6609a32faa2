package loopguard

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"go.uber.org/goleak"
)

// The guard must never spawn goroutines of its own; every goroutine in this
// suite is started and joined by the tests themselves.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// logCapture collects JSON log lines emitted through a stumpy-backed logger.
type logCapture struct {
	mu    sync.Mutex
	lines [][]byte
}

func (c *logCapture) write(e *stumpy.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Bytes omits the closing brace; the default writer appends it at
	// write time, so a replacement writer appends it too.
	c.lines = append(c.lines, append(bytes.Clone(e.Bytes()), '}'))
	return nil
}

// logLine is the decoded shape of a blocking-call warning.
type logLine struct {
	Lvl  string `json:"lvl"`
	Call string `json:"call"`
	File string `json:"file"`
	Line int    `json:"line"`
	Msg  string `json:"msg"`
}

func (c *logCapture) decoded(t *testing.T) []logLine {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]logLine, len(c.lines))
	for i, raw := range c.lines {
		if err := json.Unmarshal(raw, &out[i]); err != nil {
			t.Fatalf("log line %d is not valid JSON: %v: %s", i, err, raw)
		}
	}
	return out
}

func (c *logCapture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// newCaptureLogger returns a logger whose warnings land in the capture as
// JSON, one line per event.
func newCaptureLogger() (*logiface.Logger[logiface.Event], *logCapture) {
	capture := &logCapture{}
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithTimeField(``)),
		stumpy.L.WithWriter(logiface.WriterFunc[*stumpy.Event](capture.write)),
	)
	return logger.Logger(), capture
}

// callOffLoop runs fn on a fresh goroutine and waits for it to finish, so
// the call observes a non-loop identity relative to a gateway constructed on
// the test goroutine.
func callOffLoop(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for off-loop call")
	}
}

// frameAt is a CallerFunc fixture that records the requested skip depths and
// serves programmed frames.
type frameAt struct {
	mu    sync.Mutex
	skips []int
	frame Frame
	err   error
}

func (f *frameAt) caller(skip int) (Frame, error) {
	f.mu.Lock()
	f.skips = append(f.skips, skip)
	f.mu.Unlock()
	return f.frame, f.err
}

func (f *frameAt) requested() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.skips...)
}
