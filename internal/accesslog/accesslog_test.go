package accesslog

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2026, time.October, 19, 10, 1, 2, 0, time.UTC)

func TestLine(t *testing.T) {
	got := Line(fixed, "GET", "/", 200)
	assert.Equal(t, "[Mon Oct 19 10:01:02 2026] GET / 200 OK\n", got)

	got = Line(fixed, "PATCH", "/records/1", 405)
	assert.Equal(t, "[Mon Oct 19 10:01:02 2026] PATCH /records/1 405 Method Not Allowed\n", got)
}

func TestLogger_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	l := New(path)
	l.now = func() time.Time { return fixed }

	l.Log("POST", "/", 200)
	l.Log("PUT", "/records/abc", 400)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"[Mon Oct 19 10:01:02 2026] POST / 200 OK\n"+
			"[Mon Oct 19 10:01:02 2026] PUT /records/abc 400 Bad Request\n",
		string(b))
}

func TestLogger_OpenFailureIsSwallowed(t *testing.T) {
	var diag bytes.Buffer
	l := New(filepath.Join(t.TempDir(), "missing-dir", "server.log"))
	l.Logger = log.New(&diag, "", 0)

	assert.NotPanics(t, func() { l.Log("GET", "/", 200) })
	assert.Contains(t, diag.String(), "accesslog: open")
}

func TestLogger_NilIsNoop(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Log("GET", "/", 200) })
}

func TestLogger_ConcurrentLinesStayWhole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	l := New(path)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Log("POST", "/", 200)
		}()
	}
	wg.Wait()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 50)
	for _, line := range lines {
		assert.True(t, strings.HasSuffix(line, "] POST / 200 OK"), line)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFollow_StreamsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	l := New(path)
	l.now = func() time.Time { return fixed }
	l.Log("GET", "/", 200)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- Follow(ctx, path, &out, 10*time.Millisecond) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "GET / 200 OK")
	}, 2*time.Second, 10*time.Millisecond)

	l.Log("DELETE", "/records/1", 404)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "DELETE /records/1 404 Not Found")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 1, strings.Count(out.String(), "GET / 200 OK"))
}
