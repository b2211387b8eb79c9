package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

type gitCLI struct {
	// gitDir is absolute, so commands work for bare and non-bare repositories.
	gitDir string
}

// gitCommand describes one invocation of the git executable.
type gitCommand struct {
	args  []string
	stdin io.Reader
	// notFoundOK treats exit status 1 with empty stderr as an empty result,
	// which is how rev-parse -q and symbolic-ref -q report a missing ref.
	notFoundOK bool
}

func OpenCLI(ctx context.Context, repoPath string) (Backend, error) {
	if err := ensureMinGitVersion(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	out, err := runGit(ctx, abs, gitCommand{args: []string{"rev-parse", "--absolute-git-dir"}})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	gitDir := strings.TrimSpace(string(out))
	if gitDir == "" {
		return nil, errors.New("open repository: git rev-parse returned empty git dir")
	}
	return &gitCLI{gitDir: gitDir}, nil
}

func (g *gitCLI) RepoPath() string {
	if g == nil {
		return ""
	}
	return g.gitDir
}

func (g *gitCLI) git(ctx context.Context, cmd gitCommand) ([]byte, error) {
	if g == nil || g.gitDir == "" {
		return nil, errors.New("repository root not set")
	}
	return runGit(ctx, g.gitDir, cmd)
}

func runGit(ctx context.Context, dir string, c gitCommand) ([]byte, error) {
	label := "git"
	if len(c.args) > 0 {
		label = "git " + c.args[0]
	}
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, c.args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = c.stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("running git", slog.String("dir", dir), slog.Any("args", c.args))
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		switch {
		case c.notFoundOK && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0:
			return nil, nil
		case stderr.Len() > 0:
			return nil, fmt.Errorf("%s: %v: %s", label, err, strings.TrimSpace(stderr.String()))
		default:
			return nil, fmt.Errorf("%s: %w", label, err)
		}
	}
	return stdout.Bytes(), nil
}
