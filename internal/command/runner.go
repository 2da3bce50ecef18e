package command

//go:generate mockgen -destination=mock_runner.go -package=command . Runner

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Runner abstracts command execution for testability
type Runner interface {
	// Run executes a command and returns stdout, stderr, and error
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// execRunner implements Runner with os/exec
type execRunner struct{}

// NewRunner creates a new command runner
func NewRunner() Runner {
	return &execRunner{}
}

// Run executes a command and returns stdout, stderr, and error
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()), err
}
