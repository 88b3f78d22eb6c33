package wire

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestReadRequest_GET(t *testing.T) {
	req, err := ReadRequest(reader("GET / HTTP/1.1\r\nHost: localhost\r\n\r\n"), 0)
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/", req.Path)
	assert.Equal(t, "HTTP/1.1", req.Proto)
	assert.Equal(t, "localhost", req.Header.Get("Host"))
	assert.Empty(t, req.Body)
}

func TestReadRequest_BodyByContentLength(t *testing.T) {
	raw := "POST / HTTP/1.1\r\ncontent-length: 16\r\n\r\n{\"name\":\"alice\"}trailing garbage"
	req, err := ReadRequest(reader(raw), 0)
	require.NoError(t, err)

	assert.Equal(t, `{"name":"alice"}`, string(req.Body))
}

func TestReadRequest_SplitAcrossReads(t *testing.T) {
	raw := "PUT /records/7 HTTP/1.1\r\nContent-Length: 14\r\n\r\n{\"name\":\"bob\"}"
	r := bufio.NewReaderSize(iotest.OneByteReader(strings.NewReader(raw)), 16)

	req, err := ReadRequest(r, 0)
	require.NoError(t, err)

	assert.Equal(t, "PUT", req.Method)
	assert.Equal(t, "/records/7", req.Path)
	assert.Equal(t, `{"name":"bob"}`, string(req.Body))
}

func TestReadRequest_BareLF(t *testing.T) {
	req, err := ReadRequest(reader("DELETE /records/1 HTTP/1.0\n\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, "DELETE", req.Method)
}

func TestReadRequest_EmptyConnection(t *testing.T) {
	_, err := ReadRequest(reader(""), 0)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadRequest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		max     int
		wantErr error
	}{
		{"two tokens", "GET /\r\n\r\n", 0, ErrMalformedRequest},
		{"bad proto", "GET / FTP/1.0\r\n\r\n", 0, ErrMalformedRequest},
		{"unterminated headers", "GET / HTTP/1.1\r\nHost: x\r\n", 0, ErrMalformedRequest},
		{"header without colon", "GET / HTTP/1.1\r\nbogus\r\n\r\n", 0, ErrMalformedRequest},
		{"bad content-length", "POST / HTTP/1.1\r\nContent-Length: ten\r\n\r\n", 0, ErrMalformedRequest},
		{"negative content-length", "POST / HTTP/1.1\r\nContent-Length: -1\r\n\r\n", 0, ErrMalformedRequest},
		{"short body", "POST / HTTP/1.1\r\nContent-Length: 50\r\n\r\n{}", 0, ErrMalformedRequest},
		{"chunked", "POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n", 0, ErrMalformedRequest},
		{"long request line", "GET /" + strings.Repeat("a", 200) + " HTTP/1.1\r\n\r\n", 64, ErrRequestTooLarge},
		{"body over budget", "POST / HTTP/1.1\r\nContent-Length: 500\r\n\r\n", 100, ErrRequestTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRequest(reader(tt.raw), tt.max)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestDecodeName(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"plain", `{"name":"alice"}`, "alice", false},
		{"extra fields", `{"id":9,"name":"bob","x":[1]}`, "bob", false},
		{"escaped", `{"name":"o'brien \"q\""}`, `o'brien "q"`, false},
		{"surrounding space", " \r\n{\"name\":\"c\"}\n", "c", false},
		{"empty body", ``, "", true},
		{"no brace", `name=alice`, "", true},
		{"array", `["alice"]`, "", true},
		{"truncated", `{"name":"al`, "", true},
		{"missing name", `{"nom":"alice"}`, "", true},
		{"number name", `{"name":123}`, "", true},
		{"null name", `{"name":null}`, "", true},
		{"empty name", `{"name":""}`, "", true},
		{"trailing object", `{"name":"a"}{"name":"b"}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeName([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadBody)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
