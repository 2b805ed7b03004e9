// Package git reads staged changes and records commits through the git CLI.
package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/memix/memix/internal/pkg/errors"
)

const (
	// GitCommandTimeout bounds read-only git commands.
	GitCommandTimeout = 10 * time.Second
)

// ErrNotRepository is reported when the work directory is outside any git working tree.
var ErrNotRepository = errors.New("not a git repository")

// Client defines the repository operations used by the commit pipeline.
type Client interface {
	IsRepository(ctx context.Context) (bool, error)
	StagedDiff(ctx context.Context) (string, error)
	Commit(ctx context.Context, message string) error
}

// DefaultClient implements Client by shelling out to git.
type DefaultClient struct {
	// workDir is the working directory for git commands.
	// If empty, uses the current directory.
	workDir string
}

// NewClient creates a new DefaultClient.
func NewClient() *DefaultClient {
	return &DefaultClient{}
}

// NewClientWithWorkDir creates a new DefaultClient with a specific working directory.
func NewClientWithWorkDir(workDir string) *DefaultClient {
	return &DefaultClient{workDir: workDir}
}

func (c *DefaultClient) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}
	return cmd
}

// IsRepository reports whether the work directory is inside a git working tree.
// A non-repository is (false, nil). Any other git failure, such as a missing
// binary or an unreadable config, is an ErrRepository AppError.
func (c *DefaultClient) IsRepository(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, GitCommandTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := c.command(ctx, "rev-parse", "--is-inside-work-tree")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return false, apperrors.NewRepositoryError(ctx.Err(), "")
		}
		if _, ok := err.(*exec.ExitError); ok && strings.Contains(stderr.String(), ErrNotRepository.Error()) {
			return false, nil
		}
		return false, apperrors.NewRepositoryError(err, stderr.String())
	}

	return strings.TrimSpace(stdout.String()) == "true", nil
}

// StagedDiff returns the trimmed output of `git diff --cached`.
// The result is empty when nothing is staged.
func (c *DefaultClient) StagedDiff(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, GitCommandTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := c.command(ctx, "diff", "--cached", "--no-color")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", apperrors.NewRepositoryError(ctx.Err(), "git diff timed out")
		}
		return "", apperrors.NewRepositoryError(err, stderr.String())
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Commit records the staged changes with message, exactly once.
// The message is passed on stdin so leading dashes and newlines survive intact.
// No timeout is applied: commit hooks may run for a long time.
func (c *DefaultClient) Commit(ctx context.Context, message string) error {
	cmd := c.command(ctx, "commit", "-F", "-")
	cmd.Stdin = strings.NewReader(message)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return apperrors.NewRepositoryError(err, string(output))
	}
	return nil
}
