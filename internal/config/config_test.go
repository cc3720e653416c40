package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `backend: sqlite
http:
  addr: 127.0.0.1:9000
log:
  level: debug
  format: json
member_types:
  - id: gold
    discount: 7.5
    month_posts_limit: 300
  - id: free
    discount: 0
    month_posts_limit: 3
`)

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, types.BackendSQLite, s.Backend)
	assert.Equal(t, "127.0.0.1:9000", s.HTTP.Addr)
	assert.Equal(t, Log{Level: "debug", Format: "json"}, s.Log)
	assert.Equal(t, []types.MemberType{
		{ID: "gold", Discount: 7.5, MonthPostsLimit: 300},
		{ID: "free", Discount: 0, MonthPostsLimit: 3},
	}, s.MemberTypes)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "backend: memory\n")
	t.Setenv("SOCIALDB_BACKEND", "sqlite")
	t.Setenv("SOCIALDB_HTTP_ADDR", ":9999")

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, types.BackendSQLite, s.Backend)
	assert.Equal(t, ":9999", s.HTTP.Addr)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"unknown backend", "backend: postgres\n", types.ErrBackendUnknown},
		{"duplicate member type", "member_types:\n  - id: a\n  - id: a\n", types.ErrMemberTypeDuplicate},
		{"bad log format", "log:\n  format: xml\n", ErrLogFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			_, err := Load(dir)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("bad log level", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "log:\n  level: loud\n")
		_, err := Load(dir)
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "backend: [\n")
		_, err := Load(dir)
		assert.Error(t, err)
	})
}

func TestWriteDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	wrote, err := WriteDefault(dir)
	require.NoError(t, err)
	assert.True(t, wrote)

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	writeConfig(t, dir, "backend: sqlite\n")
	wrote, err = WriteDefault(dir)
	require.NoError(t, err)
	assert.False(t, wrote, "existing config must be kept")

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "backend: sqlite\n", string(data))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	require.NoError(t, os.WriteFile(first, []byte("SOCIALDB_TEST_A=first\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("SOCIALDB_TEST_A=second\nSOCIALDB_TEST_B=second\n"), 0o644))
	t.Setenv("SOCIALDB_TEST_A", "")
	t.Setenv("SOCIALDB_TEST_B", "")
	os.Unsetenv("SOCIALDB_TEST_A")
	os.Unsetenv("SOCIALDB_TEST_B")

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), first, second))
	assert.Equal(t, "first", os.Getenv("SOCIALDB_TEST_A"))
	assert.Equal(t, "second", os.Getenv("SOCIALDB_TEST_B"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Log{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "user", "u1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "u1", line["user"])

	_, err = Log{Level: "info", Format: "xml"}.NewLogger(&buf)
	assert.ErrorIs(t, err, ErrLogFormat)
}
