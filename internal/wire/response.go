package wire

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeYAML = "application/yaml"
)

// Response is a complete reply. A nil Body is sent as Content-Length: 0
// with no Content-Type.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Empty returns a bodiless response.
func Empty(status int) *Response {
	return &Response{Status: status}
}

// JSON marshals v into a response body. Marshal failures degrade to a
// bodiless 500.
func JSON(status int, v any) *Response {
	b, err := json.Marshal(v)
	if err != nil {
		return Empty(http.StatusInternalServerError)
	}
	return &Response{Status: status, ContentType: ContentTypeJSON, Body: b}
}

// StatusLine renders e.g. "200 OK".
func StatusLine(status int) string {
	text := http.StatusText(status)
	if text == "" {
		text = "Unknown"
	}
	return strconv.Itoa(status) + " " + text
}

// Bytes serializes the full HTTP/1.1 message.
func (r *Response) Bytes() []byte {
	var b bytes.Buffer
	b.Grow(128 + len(r.Body))
	b.WriteString("HTTP/1.1 ")
	b.WriteString(StatusLine(r.Status))
	b.WriteString("\r\n")
	if len(r.Body) > 0 && r.ContentType != "" {
		b.WriteString("Content-Type: ")
		b.WriteString(r.ContentType)
		b.WriteString("\r\n")
	}
	b.WriteString("Content-Length: ")
	b.WriteString(strconv.Itoa(len(r.Body)))
	b.WriteString("\r\nConnection: close\r\n\r\n")
	b.Write(r.Body)
	return b.Bytes()
}

// WriteTo sends the message with a single Write call.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}
