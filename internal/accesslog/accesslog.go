// Package accesslog appends one line per completed request to a plain text
// file and can stream that file back for viewing.
//
// Logging is best-effort: failures are reported to the process logger and
// never reach the request path.
package accesslog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"recordsrv/internal/wire"
)

// TimeFormat matches ctime(3) without the trailing newline.
const TimeFormat = time.ANSIC

type Logger struct {
	Path   string
	Logger *log.Logger

	now func() time.Time
}

func New(path string) *Logger {
	return &Logger{Path: path}
}

// Line formats a log entry, newline included.
func Line(t time.Time, method, path string, status int) string {
	return fmt.Sprintf("[%s] %s %s %s\n", t.Format(TimeFormat), method, path, wire.StatusLine(status))
}

// Log appends one line. The file is opened per call with O_APPEND and the
// line is written in a single write so concurrent workers never interleave
// within a line.
func (l *Logger) Log(method, path string, status int) {
	if l == nil || l.Path == "" {
		return
	}
	now := time.Now
	if l.now != nil {
		now = l.now
	}

	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		l.logf("accesslog: open %s: %v", l.Path, err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(Line(now(), method, path, status)); err != nil {
		l.logf("accesslog: write %s: %v", l.Path, err)
	}
}

func (l *Logger) logf(format string, args ...any) {
	if l.Logger != nil {
		l.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Follow copies the file at path to w and then polls for appended lines
// every interval until ctx is done. A file that does not exist yet is
// waited for. Truncation restarts from the beginning.
func Follow(ctx context.Context, path string, w io.Writer, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var offset int64
	for {
		n, err := copyFrom(path, offset, w)
		switch {
		case err == nil:
			offset = n
		case errors.Is(err, errTruncated):
			offset = 0
			continue
		case errors.Is(err, os.ErrNotExist):
		default:
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

var errTruncated = errors.New("log truncated")

// copyFrom writes complete lines after offset and returns the new offset.
// A trailing partial line is left for the next pass.
func copyFrom(path string, offset int64, w io.Writer) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return offset, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return offset, err
	}
	if st.Size() < offset {
		return 0, errTruncated
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, err
	}

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return offset, nil
			}
			return offset, err
		}
		if _, err := io.WriteString(w, line); err != nil {
			return offset, err
		}
		offset += int64(len(line))
	}
}
