// Package client talks to a recordsrv instance over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recordsrv/internal/shared"
)

// StatusError carries a non-200 reply. Msg is the server's "error" field
// when it sent one.
type StatusError struct {
	Code int
	Msg  string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("server returned %d: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("server returned %d", e.Code)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

type Client struct {
	ServerURL string
	HTTP      *http.Client
}

func New(serverURL string) *Client {
	return &Client{
		ServerURL: strings.TrimRight(serverURL, "/"),
		HTTP:      &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) List(ctx context.Context) ([]shared.RecordView, error) {
	b, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return nil, err
	}
	return shared.DecodeRecords(b)
}

func (c *Client) Get(ctx context.Context, id int64) (shared.RecordView, error) {
	var v shared.RecordView
	b, err := c.do(ctx, http.MethodGet, recordPath(id), nil)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(b, &v)
	return v, err
}

func (c *Client) Create(ctx context.Context, name string) (string, error) {
	return c.mutate(ctx, http.MethodPost, "/", name)
}

func (c *Client) Update(ctx context.Context, id int64, name string) (string, error) {
	return c.mutate(ctx, http.MethodPut, recordPath(id), name)
}

func (c *Client) Delete(ctx context.Context, id int64) (string, error) {
	b, err := c.do(ctx, http.MethodDelete, recordPath(id), nil)
	if err != nil {
		return "", err
	}
	return message(b)
}

// OpenAPI fetches the raw openapi.yaml.
func (c *Client) OpenAPI(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/openapi.yaml", nil)
}

func (c *Client) mutate(ctx context.Context, method, path, name string) (string, error) {
	body, _ := json.Marshal(shared.NameRequest{Name: name})
	b, err := c.do(ctx, method, path, body)
	if err != nil {
		return "", err
	}
	return message(b)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.ServerURL+path, rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		se := &StatusError{Code: resp.StatusCode}
		var er shared.ErrorResponse
		if json.Unmarshal(b, &er) == nil {
			se.Msg = er.Error
		}
		return nil, se
	}
	return b, nil
}

func message(b []byte) (string, error) {
	var mr shared.MessageResponse
	if err := json.Unmarshal(b, &mr); err != nil {
		return "", err
	}
	return mr.Message, nil
}

func recordPath(id int64) string {
	return "/records/" + strconv.FormatInt(id, 10)
}
