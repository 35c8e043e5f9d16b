// Package bridge launches the external bridge binary and captures what it
// prints. It knows nothing about what the commands mean.
package bridge

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrToolNotFound = errors.New("bridge tool not found")
	ErrProcess      = errors.New("bridge process failed")
)

// Result is the outcome of one invocation. A nil Err is success, even with
// empty Output.
type Result struct {
	Output string
	Err    error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Recorder receives the log lines a run produces.
type Recorder func(msg string, isError bool)

type Runner struct {
	global []string
}

// NewRunner prepares a runner. globalArgs is split shell-style and placed
// before every command, e.g. "-H 10.0.0.2 -P 5037".
func NewRunner(globalArgs string) (*Runner, error) {
	r := &Runner{}
	if strings.TrimSpace(globalArgs) == "" {
		return r, nil
	}
	parts, err := shlex.Split(globalArgs)
	if err != nil {
		return nil, fmt.Errorf("%w: global args: %v", ErrValidation, err)
	}
	r.global = parts
	return r, nil
}

// Run blocks until the process exits. The path is assumed to be checked.
func (r *Runner) Run(path string, args []string, rec Recorder) Result {
	argv := make([]string, 0, len(r.global)+len(args))
	argv = append(argv, r.global...)
	argv = append(argv, args...)
	if rec == nil {
		rec = func(string, bool) {}
	}
	rec("run: "+Command(argv...), false)

	cmd := exec.Command(path, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return Result{Output: stdout.String()}
	case errors.As(err, &exitErr):
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return Result{Output: stdout.String()}
		}
		rec("bridge error: "+msg, true)
		return Result{Output: stdout.String(), Err: fmt.Errorf("%w: %s", ErrProcess, msg)}
	default:
		rec("bridge launch failed: "+err.Error(), true)
		return Result{Err: fmt.Errorf("%w: %v", ErrProcess, err)}
	}
}

// Command renders an argument list the way it appears in logs.
func Command(args ...string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}

// SplitArgs parses a user-entered argument line for passthrough commands.
func SplitArgs(line string) ([]string, error) {
	parts, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrValidation)
	}
	return parts, nil
}
