package syncsched

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/uuid"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of one regeneration run.
type Result struct {
	RunID   string `json:"run_id"`
	Project string `json:"project"` // "all" when regenerating every project
	Status  string `json:"status"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Invoker runs the external regeneration process. The command is an
// argv prefix (typically this binary's own `sync` subcommand with
// --root set); a non-empty project name is appended as the final
// argument. Exit 0 means success; anything else, or a timeout, is a
// failure with diagnostics taken from stderr.
//
// The process is strictly downstream: it re-derives from the on-disk
// documents and never touches them, so running it twice is safe.
type Invoker struct {
	command []string
}

// NewInvoker creates an invoker for the given argv prefix.
func NewInvoker(command []string) *Invoker {
	return &Invoker{command: command}
}

// Run executes the regeneration process, bounded by ctx. An empty
// project regenerates all projects.
func (iv *Invoker) Run(ctx context.Context, project string) Result {
	result := Result{
		RunID:   uuid.NewString()[:8],
		Project: project,
	}
	if project == "" {
		result.Project = "all"
	}

	argv := iv.command
	if project != "" {
		argv = append(append([]string(nil), iv.command...), project)
	}
	if len(argv) == 0 {
		result.Status = StatusError
		result.Error = "no sync command configured"
		return result
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Output = stdout.String()

	switch {
	case err == nil:
		result.Status = StatusSuccess
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.Status = StatusError
		result.Error = fmt.Sprintf("sync timed out: %v", ctx.Err())
	default:
		result.Status = StatusError
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = err.Error()
		}
		result.Error = diag
	}
	return result
}
