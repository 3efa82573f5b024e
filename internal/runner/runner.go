// Package runner stages a source snippet in a private scratch directory
// and executes it with the configured script runtime.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ScriptFile is the name the staged source is given inside the scratch
// directory.
const ScriptFile = "main.ts"

// SetupError reports a failure to stage or spawn an execution: scratch
// directory creation, source persistence, or process start. It is
// distinct from a script that ran and exited non-zero.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string { return e.Err.Error() }

func (e *SetupError) Unwrap() error { return e.Err }

// Runner executes source snippets with a script runtime binary.
// Each call stages the source in a fresh scratch directory which is
// removed before Run returns, on every path. Spawned processes inherit
// the parent's environment and privileges unchanged.
type Runner struct {
	Bin         string        // runtime binary, resolved via PATH (e.g. "deno")
	RunArgs     []string      // runtime subcommand and flags (e.g. "run", "--no-check")
	Permissions []string      // capability flags appended to every invocation
	Timeout     time.Duration // 0 means the call blocks until the child exits
	MaxOutput   int           // cap in bytes per stream; 0 means unbounded
}

// Run executes source and blocks until the child exits and both streams
// are fully drained. A completed process is reported as a Result whatever
// its exit code; a *SetupError is returned when no process completed.
func (r *Runner) Run(ctx context.Context, source string) (*Result, error) {
	if r.Bin == "" {
		return nil, &SetupError{Err: errors.New("no runtime binary configured")}
	}

	dir, err := os.MkdirTemp("", "tsrun-*")
	if err != nil {
		return nil, &SetupError{Err: fmt.Errorf("creating scratch directory: %w", err)}
	}
	defer os.RemoveAll(dir)

	script := filepath.Join(dir, ScriptFile)
	if err := os.WriteFile(script, []byte(source), 0o600); err != nil {
		return nil, &SetupError{Err: fmt.Errorf("staging source: %w", err)}
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	argv := make([]string, 0, len(r.RunArgs)+len(r.Permissions)+1)
	argv = append(argv, r.RunArgs...)
	argv = append(argv, r.Permissions...)
	argv = append(argv, script)

	cmd := exec.CommandContext(ctx, r.Bin, argv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitWriter{buf: &stdout, limit: r.MaxOutput}
	cmd.Stderr = &limitWriter{buf: &stderr, limit: r.MaxOutput}

	runErr := cmd.Run()

	truncated := r.MaxOutput > 0 &&
		(stdout.Len() >= r.MaxOutput || stderr.Len() >= r.MaxOutput)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			// Binary not found or other spawn failure.
			return nil, &SetupError{Err: fmt.Errorf("executing %s: %w", r.Bin, runErr)}
		}
	}

	return &Result{
		RunID:     uuid.New().String(),
		ExitCode:  exitCode,
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Truncated: truncated,
	}, nil
}

// limitWriter writes up to limit bytes to buf, then silently discards the
// rest. A limit of zero disables the cap.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if w.limit <= 0 {
		return w.buf.Write(p)
	}
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Write only what fits, but report all bytes as consumed
		// to avoid short write errors from io.Copy.
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
