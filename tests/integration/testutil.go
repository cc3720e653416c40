// Package integration runs the socialdb binary end to end: CLI commands and
// the HTTP API served by "socialdb serve".
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var (
	// socialdbBin is the path to the built socialdb binary.
	socialdbBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// TestEnv provides an isolated config directory for one test.
type TestEnv struct {
	t      *testing.T
	Config string
}

// NewTestEnv creates a config directory whose config.yaml selects backend.
func NewTestEnv(t *testing.T, backend string) *TestEnv {
	t.Helper()
	if buildErr != nil {
		t.Fatalf("failed to build socialdb: %v", buildErr)
	}
	if socialdbBin == "" {
		t.Fatal("socialdb binary not built (socialdbBin is empty)")
	}

	configDir := filepath.Join(t.TempDir(), "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	content := "backend: " + backend + "\nlog:\n  level: debug\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return &TestEnv{t: t, Config: configDir}
}

// CmdResult holds the result of a socialdb command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes the socialdb CLI with the given arguments.
func (e *TestEnv) Run(args ...string) CmdResult {
	e.t.Helper()
	allArgs := append([]string{"--config-dir", e.Config}, args...)
	cmd := exec.Command(socialdbBin, allArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			e.t.Fatalf("failed to run socialdb: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}
}

// MustRun executes the CLI and fails the test on a non-zero exit code.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	result := e.Run(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("socialdb %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// Server is a running "socialdb serve" process.
type Server struct {
	t       *testing.T
	BaseURL string
	cmd     *exec.Cmd
	stderr  *bytes.Buffer
}

// StartServer launches "socialdb serve" on a free port and waits until the
// health check answers. The process is interrupted when the test ends.
func (e *TestEnv) StartServer() *Server {
	e.t.Helper()
	addr := freeAddr(e.t)
	cmd := exec.Command(socialdbBin, "--config-dir", e.Config, "serve", "--addr", addr)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		e.t.Fatalf("failed to start server: %v", err)
	}

	s := &Server{t: e.t, BaseURL: "http://" + addr, cmd: cmd, stderr: &stderr}
	e.t.Cleanup(s.Stop)

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(s.BaseURL + "/")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return s
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	e.t.Fatalf("server did not become ready:\n%s", stderr.String())
	return nil
}

// Stop interrupts the server and waits for it to exit.
func (s *Server) Stop() {
	if s.cmd.ProcessState != nil {
		return
	}
	_ = s.cmd.Process.Signal(os.Interrupt)
	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			s.t.Errorf("server exited with error: %v\n%s", err, s.stderr.String())
		}
	case <-time.After(10 * time.Second):
		_ = s.cmd.Process.Kill()
		s.t.Errorf("server did not stop after interrupt")
	}
}

// Do sends a JSON request and returns the status and body.
func (s *Server) Do(method, path string, body any) (int, []byte) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.BaseURL+path, reader)
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		s.t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

// MustDo sends a request that must return 200 and decodes the response.
func MustDo[T any](s *Server, method, path string, body any) T {
	s.t.Helper()
	status, data := s.Do(method, path, body)
	if status != http.StatusOK {
		s.t.Fatalf("%s %s: status %d, body %s", method, path, status, data)
	}
	return ParseJSON[T](s.t, string(data))
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}

// Metric returns the value of the first exposition line starting with
// prefix, or fails the test.
func (s *Server) Metric(prefix string) string {
	s.t.Helper()
	_, data := s.Do(http.MethodGet, "/metrics", nil)
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, prefix) {
			fields := strings.Fields(line)
			return fields[len(fields)-1]
		}
	}
	s.t.Fatalf("metric %q not found", prefix)
	return ""
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	defer ln.Close()
	return fmt.Sprintf("127.0.0.1:%d", ln.Addr().(*net.TCPAddr).Port)
}
