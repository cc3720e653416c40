package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// TestMain builds the socialdb binary once before running tests.
func TestMain(m *testing.M) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		buildErr = err
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "socialdb-test-*")
	if err != nil {
		buildErr = err
		os.Exit(1)
	}
	socialdbBin = filepath.Join(tmpDir, "socialdb")

	cmd := exec.Command("go", "build", "-o", socialdbBin, "./cmd/socialdb")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		buildErr = &BuildError{Err: err, Output: string(output)}
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func TestCLIVersion(t *testing.T) {
	env := NewTestEnv(t, types.BackendMemory)
	result := env.MustRun("version")
	assert.True(t, strings.HasPrefix(result.Stdout, "socialdb v"), result.Stdout)
}

func TestCLIInitKeepsExistingConfig(t *testing.T) {
	env := NewTestEnv(t, types.BackendSQLite)
	result := env.MustRun("init")
	assert.Contains(t, result.Stdout, "already exists")

	data, err := os.ReadFile(filepath.Join(env.Config, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
}

func TestCLIInitWritesDefaults(t *testing.T) {
	env := NewTestEnv(t, types.BackendMemory)
	fresh := filepath.Join(t.TempDir(), "fresh")
	result := env.MustRun("--config-dir", fresh, "init")
	assert.Contains(t, result.Stdout, "Wrote")

	_, err := os.Stat(filepath.Join(fresh, "config.yaml"))
	assert.NoError(t, err)
}

func TestCLIMemberTypes(t *testing.T) {
	env := NewTestEnv(t, types.BackendMemory)
	result := env.MustRun("member-types", "--json")
	got := ParseJSON[[]types.MemberType](t, result.Stdout)
	assert.Equal(t, types.DefaultMemberTypes(), got)
}

func TestCLIExitCodes(t *testing.T) {
	env := NewTestEnv(t, "postgres")
	result := env.Run("member-types")
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "unknown backend")

	ok := NewTestEnv(t, types.BackendMemory)
	result = ok.Run("serve", "--addr", "not-an-address")
	assert.Equal(t, 2, result.ExitCode)
}
