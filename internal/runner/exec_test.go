package runner_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ISE-SMILE/openwhisk-runtime-docker/internal/runner"
	"github.com/stretchr/testify/require"
)

// writeScript stores an executable shell script and returns its path.
func writeScript(t *testing.T, content string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("skipped, binary sh not available: %v", err)
	}
	path := filepath.Join(t.TempDir(), "exec")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+content), 0o755)
	require.NoError(t, err)
	return path
}

func TestExecutorResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
		logs   string
	}{
		{
			name:   "result only",
			script: `echo '{"ok":true}'`,
		},
		{
			name:   "no trailing newline",
			script: `printf '{"ok":true}'`,
		},
		{
			name:   "one log line",
			script: "echo starting\necho '{\"ok\":true}'",
			logs:   "starting\n",
		},
		{
			name:   "many log lines",
			script: "echo one\necho two\necho three\necho '{\"ok\":true}'",
			logs:   "one\ntwo\nthree\n",
		},
		{
			name:   "result surrounded by whitespace",
			script: "echo hello\nprintf '  {\"ok\":true}  '",
			logs:   "hello\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var stdout, stderr bytes.Buffer
			ex := &runner.Executor{
				Binary: writeScript(t, tc.script),
				Stdout: &stdout,
				Stderr: &stderr,
			}
			result, err := ex.Run(t.Context(), map[string]any{}, nil)
			require.NoError(t, err)
			require.Equal(t, map[string]any{"ok": true}, result)
			require.Equal(t, tc.logs, stdout.String())
		})
	}
}

func TestExecutorBadResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
		line   string
	}{
		{"non-object json", `echo '"just a string"'`, `"just a string"`},
		{"json array", `echo '[1,2,3]'`, `[1,2,3]`},
		{"json null", `echo null`, `null`},
		{"malformed", `echo not json at all`, `not json at all`},
		{"empty output", `true`, ``},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ex := &runner.Executor{
				Binary: writeScript(t, tc.script),
				Stdout: &bytes.Buffer{},
				Stderr: &bytes.Buffer{},
			}
			_, err := ex.Run(t.Context(), map[string]any{}, nil)
			require.Error(t, err)
			var runErr *runner.RunError
			require.ErrorAs(t, err, &runErr)
			require.Equal(t, tc.line, runErr.Line)
		})
	}
}

func TestExecutorStderrForwarded(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	ex := &runner.Executor{
		Binary: writeScript(t, "echo 1>&2 'something went sideways'\necho '{\"ok\":1}'"),
		Stdout: &stdout,
		Stderr: &stderr,
	}
	result, err := ex.Run(t.Context(), map[string]any{}, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"ok": float64(1)}, result)
	require.Equal(t, "something went sideways\n", stderr.String())
}

func TestExecutorNonZeroExit(t *testing.T) {
	t.Parallel()
	// the exit status is not the verdict, the last line is
	ex := &runner.Executor{
		Binary: writeScript(t, "echo '{\"error\":\"deliberate\"}'\nexit 1"),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}
	result, err := ex.Run(t.Context(), map[string]any{}, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"error": "deliberate"}, result)
}

func TestExecutorSpawnFailure(t *testing.T) {
	t.Parallel()
	ex := &runner.Executor{
		Binary: filepath.Join(t.TempDir(), "does-not-exist"),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}
	_, err := ex.Run(t.Context(), map[string]any{}, nil)
	var runErr *runner.RunError
	require.ErrorAs(t, err, &runErr)
	require.Contains(t, runErr.Line, "does-not-exist")
}

// paddedArgs builds arguments whose JSON serialization is exactly n bytes.
func paddedArgs(t *testing.T, n int) map[string]any {
	t.Helper()
	overhead := len(`{"p":""}`)
	require.GreaterOrEqual(t, n, overhead)
	args := map[string]any{"p": strings.Repeat("x", n-overhead)}
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	require.Len(t, raw, n)
	return args
}

func TestExecutorArgvThreshold(t *testing.T) {
	t.Parallel()
	// the script reports how many argv entries it got
	script := writeScript(t, `printf '{"argc":%d}' "$#"`)

	tests := []struct {
		name string
		size int
		argc float64
	}{
		{"below the limit", runner.MaxArgStrLen - 1, 1},
		{"at the limit", runner.MaxArgStrLen, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ex := &runner.Executor{
				Binary: script,
				Stdout: &bytes.Buffer{},
				Stderr: &bytes.Buffer{},
			}
			result, err := ex.Run(t.Context(), paddedArgs(t, tc.size), nil)
			require.NoError(t, err)
			require.Equal(t, map[string]any{"argc": tc.argc}, result)
		})
	}
}

func TestExecutorStdinCarriesArgs(t *testing.T) {
	t.Parallel()
	// an action echoing its stdin returns the arguments unchanged, even
	// when they are too large for argv
	ex := &runner.Executor{
		Binary: writeScript(t, "cat"),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}
	args := paddedArgs(t, runner.MaxArgStrLen+100)
	result, err := ex.Run(t.Context(), args, nil)
	require.NoError(t, err)
	require.Equal(t, args, result)
}

func TestExecutorEnv(t *testing.T) {
	t.Parallel()
	ex := &runner.Executor{
		Binary: writeScript(t, `printf '{"key":"%s"}' "$__OW_API_KEY"`),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}
	env := runner.Env(nil, map[string]any{"api_key": "secret"})
	result, err := ex.Run(t.Context(), map[string]any{}, env)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"key": "secret"}, result)
}
