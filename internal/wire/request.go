// Package wire implements the HTTP/1.1 framing used by recordsrv: reading a
// single request off a connection and serializing a single response back.
//
// Only the subset the server needs is supported: one request per
// connection, Content-Length delimited bodies, no chunked encoding.
package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"strings"
)

// DefaultMaxRequestSize bounds header block plus body.
const DefaultMaxRequestSize = 1 << 20

var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrRequestTooLarge  = errors.New("request too large")
	ErrBadBody          = errors.New("bad request body")
)

type Request struct {
	Method string
	Path   string
	Proto  string
	Header textproto.MIMEHeader
	Body   []byte
}

// ReadRequest reads one request from r, looping until the header block and
// the declared body have fully arrived. maxSize <= 0 selects
// DefaultMaxRequestSize. io.EOF is returned untouched when the peer closed
// without sending a byte.
func ReadRequest(r *bufio.Reader, maxSize int) (*Request, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}
	budget := maxSize

	line, err := readLine(r, &budget)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) != 3 || !strings.HasPrefix(fields[2], "HTTP/") {
		return nil, fmt.Errorf("%w: request line %q", ErrMalformedRequest, firstN(line, 64))
	}
	req := &Request{
		Method: fields[0],
		Path:   fields[1],
		Proto:  fields[2],
		Header: textproto.MIMEHeader{},
	}

	for {
		line, err := readLine(r, &budget)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: header block not terminated", ErrMalformedRequest)
			}
			return nil, err
		}
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: header line %q", ErrMalformedRequest, firstN(line, 64))
		}
		req.Header.Add(textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(name)), strings.TrimSpace(value))
	}

	if req.Header.Get("Transfer-Encoding") != "" {
		return nil, fmt.Errorf("%w: transfer-encoding not supported", ErrMalformedRequest)
	}

	cl := req.Header.Get("Content-Length")
	if cl == "" {
		return req, nil
	}
	n, err := strconv.ParseInt(cl, 10, 64)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: content-length %q", ErrMalformedRequest, cl)
	}
	if n > int64(budget) {
		return nil, ErrRequestTooLarge
	}
	req.Body = make([]byte, n)
	if _, err := io.ReadFull(r, req.Body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: body shorter than content-length", ErrMalformedRequest)
		}
		return nil, err
	}
	return req, nil
}

// readLine returns one line without its CRLF (or bare LF) and charges its
// length against budget.
func readLine(r *bufio.Reader, budget *int) (string, error) {
	var buf []byte
	for {
		chunk, err := r.ReadSlice('\n')
		if len(buf)+len(chunk) > *budget {
			return "", ErrRequestTooLarge
		}
		buf = append(buf, chunk...)
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) && len(buf) > 0 {
			return "", fmt.Errorf("%w: unexpected end of request", ErrMalformedRequest)
		}
		return "", err
	}
	*budget -= len(buf)
	return strings.TrimRight(string(buf), "\r\n"), nil
}

type nameBody struct {
	Name *json.RawMessage `json:"name"`
}

// DecodeName extracts the required "name" string from a mutating request
// body. The body must be a single JSON object whose name is a non-empty
// string.
func DecodeName(body []byte) (string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return "", fmt.Errorf("%w: expected a JSON object", ErrBadBody)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	var nb nameBody
	if err := dec.Decode(&nb); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	if dec.More() {
		return "", fmt.Errorf("%w: trailing data after object", ErrBadBody)
	}
	if nb.Name == nil {
		return "", fmt.Errorf("%w: missing name", ErrBadBody)
	}

	raw := bytes.TrimSpace(*nb.Name)
	if len(raw) == 0 || raw[0] != '"' {
		return "", fmt.Errorf("%w: name must be a string", ErrBadBody)
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	if name == "" {
		return "", fmt.Errorf("%w: name is empty", ErrBadBody)
	}
	return name, nil
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
