package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

type ServerConfig struct {
	Addr              string `json:"addr"`
	DBPath            string `json:"db_path"`
	LogPath           string `json:"log_path"`
	OpenAPIPath       string `json:"openapi_path"`
	MaxConns          int    `json:"max_conns"`
	MaxRequestBytes   int    `json:"max_request_bytes"`
	ReadTimeoutSecs   int    `json:"read_timeout_seconds"`
	WriteTimeoutSecs  int    `json:"write_timeout_seconds"`
	ShutdownGraceSecs int    `json:"shutdown_grace_seconds"`
}

func DefaultServerConfig() *ServerConfig {
	c := &ServerConfig{}
	c.fillDefaults()
	return c
}

func (c *ServerConfig) fillDefaults() {
	if c.Addr == "" {
		c.Addr = ":3999"
	}
	if c.DBPath == "" {
		c.DBPath = "./data/records.db"
	}
	if c.LogPath == "" {
		c.LogPath = "server.log"
	}
	if c.OpenAPIPath == "" {
		c.OpenAPIPath = "openapi.yaml"
	}
	if c.MaxConns <= 0 {
		c.MaxConns = 256
	}
	if c.MaxRequestBytes <= 0 {
		c.MaxRequestBytes = 1 << 20
	}
	if c.ReadTimeoutSecs <= 0 {
		c.ReadTimeoutSecs = 10
	}
	if c.WriteTimeoutSecs <= 0 {
		c.WriteTimeoutSecs = 10
	}
	if c.ShutdownGraceSecs <= 0 {
		c.ShutdownGraceSecs = 5
	}
}

// LoadServerConfig reads a JSON config file. An empty path or a missing
// file yields the defaults.
func LoadServerConfig(path string) (*ServerConfig, error) {
	c := &ServerConfig{}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}
	c.fillDefaults()
	return c, nil
}

// ApplyEnv overrides fields from RS_* environment variables.
func (c *ServerConfig) ApplyEnv() error {
	if v := os.Getenv("RS_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("RS_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("RS_LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("RS_OPENAPI_PATH"); v != "" {
		c.OpenAPIPath = v
	}
	if v := os.Getenv("RS_MAX_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("RS_MAX_CONNS: invalid value %q", v)
		}
		c.MaxConns = n
	}
	return nil
}

func SaveServerConfig(path string, c *ServerConfig) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0600)
}

// ServerURL resolves the client target: explicit flag, then RS_SERVER_URL,
// then the local default.
func ServerURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("RS_SERVER_URL"); v != "" {
		return v
	}
	return "http://127.0.0.1:3999"
}
