package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// MaxArgStrLen mirrors MAX_ARG_STRLEN from linux/binfmts.h, the longest
// single argv string the kernel accepts. Serialized arguments at or over
// this length travel via stdin only. The limit varies by host, it is a
// tuning constant rather than a portability guarantee.
const MaxArgStrLen = 131071

// Executor invokes the action binary once per request. Arguments are
// serialized to JSON and handed to the child on stdin, and additionally as
// its single command-line argument when they fit into ArgLimit.
//
// The child may log freely: everything on stdout before its last line goes
// verbatim to Stdout, all of its stderr goes verbatim to Stderr, and only
// the last line is parsed as the result.
type Executor struct {
	Binary string
	// ArgLimit overrides MaxArgStrLen when positive.
	ArgLimit int
	// Stdout and Stderr receive the action's forwarded log output,
	// defaulting to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Run spawns the binary and blocks until it exits. Callers are expected to
// have checked Verify first. A non-zero exit status is not an error by
// itself, the child's output still carries the verdict; failures to spawn
// or communicate, and last lines that are not a JSON object, surface as a
// *RunError.
func (e *Executor) Run(ctx context.Context, args map[string]any, env []string) (map[string]any, error) {
	input, err := json.Marshal(args)
	if err != nil {
		return nil, &RunError{Line: fmt.Sprintf("serializing arguments: %v", err)}
	}

	limit := e.ArgLimit
	if limit <= 0 {
		limit = MaxArgStrLen
	}
	var argv []string
	if len(input) < limit {
		argv = []string{string(input)}
	}

	cmd := exec.CommandContext(ctx, e.Binary, argv...)
	// actions expect to run from their own directory
	cmd.Dir = filepath.Dir(e.Binary)
	cmd.Env = env
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, &RunError{Line: err.Error()}
	}

	logs, last := splitResult(stdout.String())
	if logs != "" {
		_, _ = io.WriteString(e.stdout(), logs)
	}
	if stderr.Len() > 0 {
		_, _ = e.stderr().Write(stderr.Bytes())
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(last), &result); err != nil || result == nil {
		return nil, &RunError{Line: last}
	}
	return result, nil
}

// splitResult separates incidental log output from the candidate result
// line. The cut point is the last newline strictly before the final byte,
// so a trailing newline stays attached to the result line. Without any
// such newline the whole output is the candidate and nothing is logged.
func splitResult(out string) (logs, last string) {
	end := len(out) - 1
	if end < 0 {
		end = 0
	}
	if idx := strings.LastIndexByte(out[:end], '\n'); idx >= 0 {
		return out[:idx+1], strings.TrimSpace(out[idx+1:])
	}
	return "", strings.TrimSpace(out)
}

func (e *Executor) stdout() io.Writer {
	if e.Stdout != nil {
		return e.Stdout
	}
	return os.Stdout
}

func (e *Executor) stderr() io.Writer {
	if e.Stderr != nil {
		return e.Stderr
	}
	return os.Stderr
}
