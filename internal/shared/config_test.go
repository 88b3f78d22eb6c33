package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	c, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, ":3999", c.Addr)
	assert.Equal(t, "openapi.yaml", c.OpenAPIPath)
	assert.Equal(t, 256, c.MaxConns)
	assert.Equal(t, 1<<20, c.MaxRequestBytes)
}

func TestLoadServerConfig_RoundTripKeepsExplicitValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	in := DefaultServerConfig()
	in.Addr = "127.0.0.1:4000"
	in.MaxConns = 8
	require.NoError(t, SaveServerConfig(path, in))

	out, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadServerConfig_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0600))

	_, err := LoadServerConfig(path)
	assert.Error(t, err)
}

func TestServerConfig_ApplyEnv(t *testing.T) {
	t.Setenv("RS_ADDR", ":5000")
	t.Setenv("RS_DB_PATH", "/tmp/x.db")
	t.Setenv("RS_MAX_CONNS", "3")

	c := DefaultServerConfig()
	require.NoError(t, c.ApplyEnv())
	assert.Equal(t, ":5000", c.Addr)
	assert.Equal(t, "/tmp/x.db", c.DBPath)
	assert.Equal(t, 3, c.MaxConns)

	t.Setenv("RS_MAX_CONNS", "zero")
	assert.Error(t, c.ApplyEnv())
}

func TestServerURL(t *testing.T) {
	t.Setenv("RS_SERVER_URL", "")
	assert.Equal(t, "http://127.0.0.1:3999", ServerURL(""))

	t.Setenv("RS_SERVER_URL", "http://env:1")
	assert.Equal(t, "http://env:1", ServerURL(""))
	assert.Equal(t, "http://flag:2", ServerURL("http://flag:2"))
}
