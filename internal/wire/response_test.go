package wire

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_Empty(t *testing.T) {
	got := string(Empty(http.StatusBadRequest).Bytes())
	assert.Equal(t, "HTTP/1.1 400 Bad Request\r\nContent-Length: 0\r\nConnection: close\r\n\r\n", got)
}

func TestResponse_JSON(t *testing.T) {
	got := string(JSON(http.StatusOK, map[string]string{"message": "ok"}).Bytes())
	want := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: application/json\r\n" +
		"Content-Length: 16\r\n" +
		"Connection: close\r\n\r\n" +
		`{"message":"ok"}`
	assert.Equal(t, want, got)
}

func TestResponse_WriteToSingleWrite(t *testing.T) {
	var w countingWriter
	resp := &Response{Status: http.StatusOK, ContentType: ContentTypeYAML, Body: []byte("openapi: 3.0.0\n")}

	n, err := resp.WriteTo(&w)
	require.NoError(t, err)
	assert.Equal(t, 1, w.calls)
	assert.Equal(t, int64(w.buf.Len()), n)
	assert.Contains(t, w.buf.String(), "Content-Type: application/yaml\r\n")
}

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "405 Method Not Allowed", StatusLine(http.StatusMethodNotAllowed))
	assert.Equal(t, "599 Unknown", StatusLine(599))
}

type countingWriter struct {
	buf   bytes.Buffer
	calls int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.calls++
	return w.buf.Write(p)
}
