// Package lsof lists open sockets and their owning processes by running the
// system lsof binary and parsing its tabular output.
package lsof

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/openports/openports/pkg/model"
)

// DefaultTimeout bounds the wait on the lsof subprocess.
const DefaultTimeout = 30 * time.Second

// +c 300 keeps lsof from truncating long command names; -nP skips host and
// port name resolution so the output stays numeric.
var argv = []string{"lsof", "+c", "300", "-i", "-nP"}

// ToolError wraps a failure to run the listing tool. There is no substitute
// data source for this lister, so callers treat it as fatal.
type ToolError struct {
	Err error
}

func (e *ToolError) Error() string {
	return "lsof: " + e.Err.Error()
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Lister runs the listing tool and parses its output.
type Lister struct {
	// Run overrides subprocess execution; tests use it to feed canned output.
	Run func(ctx context.Context) (string, error)
}

// List invokes the tool and returns one ParsedLine per data line.
func (l *Lister) List(ctx context.Context) ([]model.ParsedLine, error) {
	run := l.Run
	if run == nil {
		run = runTool
	}
	out, err := run(ctx)
	if err != nil {
		return nil, &ToolError{Err: err}
	}
	return ParseOutput(strings.NewReader(out)), nil
}

func runTool(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).Output()
	return string(out), err
}
