// Package interp executes generated Python with an interpreter binary
// installed on the host.
package interp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrNoInterpreter means none of the configured binaries could be started.
var ErrNoInterpreter = errors.New("no python interpreter found")

// Output is what a run of the generated program produced.
type Output struct {
	Interpreter string
	Stdout      string
	Stderr      string
	ExitCode    int
}

// Runner writes the program to a temporary file and runs it with the first
// interpreter that exists. A binary is skipped when it cannot be found or
// when its stderr says "not found", the way a shell reports a missing
// command.
type Runner struct {
	Interpreters []string
	Timeout      time.Duration
	// TempDir holds the temporary program files; empty means os.TempDir().
	TempDir string
	Logger  *log.Logger
}

func NewRunner(interpreters ...string) *Runner {
	if len(interpreters) == 0 {
		interpreters = []string{"python", "python3"}
	}

	return &Runner{
		Interpreters: interpreters,
		Timeout:      10 * time.Second,
		Logger:       log.New(io.Discard, "", 0),
	}
}

// Run executes code. A non-zero exit status is not an error: the status and
// stderr are reported in Output. Errors are reserved for failing to run
// anything at all.
func (r *Runner) Run(ctx context.Context, code string) (Output, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	path, err := r.writeTemp(code)
	if err != nil {
		return Output{}, err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			r.logger().Printf("could not delete temp file: %v", err)
		}
	}()

	var errs []error
	for _, name := range r.Interpreters {
		out, err := run(ctx, name, path)
		if ctx.Err() != nil {
			return Output{}, err
		}
		if err != nil {
			r.logger().Printf("%s: %v", name, err)
			errs = append(errs, err)
			continue
		}
		if out.ExitCode != 0 && strings.Contains(out.Stderr, "not found") {
			r.logger().Printf("%s: %s", name, strings.TrimSpace(out.Stderr))
			errs = append(errs, fmt.Errorf("%s: %s", name, strings.TrimSpace(out.Stderr)))
			continue
		}
		r.logger().Printf("ran %s with %s (exit %d)", path, name, out.ExitCode)

		return out, nil
	}

	return Output{}, fmt.Errorf("%w: %w", ErrNoInterpreter, errors.Join(errs...))
}

func (r *Runner) writeTemp(code string) (string, error) {
	f, err := os.CreateTemp(r.TempDir, "ebpl_*.py")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.WriteString(code); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return f.Name(), nil
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return r.Logger
}

// run returns an error only when the process could not be started or was
// stopped by ctx.
func run(ctx context.Context, name, path string) (Output, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// children of a killed interpreter may hold the pipes open
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Output{}, fmt.Errorf("%s: %w", name, ctxErr)
	}

	out := Output{Interpreter: name, Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	default:
		return Output{}, fmt.Errorf("%s: %w", name, err)
	}

	return out, nil
}
