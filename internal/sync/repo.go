package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	// ErrNotRepository is returned when the working copy is missing or is
	// not a git repository.
	ErrNotRepository = errors.New("repository not found")

	// ErrEmptyMessage is returned by Push when no commit message is given.
	ErrEmptyMessage = errors.New("commit message is required")
)

// Repo is the local git working copy holding the catalog files.
type Repo struct {
	path string
}

// RepoStatus describes the working copy.
type RepoStatus struct {
	Configured bool   `json:"configured"`
	Branch     string `json:"branch,omitempty"`
	Head       string `json:"head,omitempty"`
	Dirty      bool   `json:"dirty"`
}

// PushResult describes what Push did.
type PushResult struct {
	Committed bool   `json:"committed"`
	Head      string `json:"head"`
}

func NewRepo(path string) *Repo {
	return &Repo{path: path}
}

func (r *Repo) Path() string { return r.path }

// Configured reports whether the path is a git working copy.
func (r *Repo) Configured() bool {
	if r.path == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(r.path, ".git"))
	return err == nil
}

// EnsureCloned clones url into the repo path unless a working copy is
// already there. An empty url is a no-op; a non-empty directory that is not
// a working copy is an error.
func (r *Repo) EnsureCloned(ctx context.Context, url string) error {
	if url == "" || r.Configured() {
		return nil
	}
	if entries, err := os.ReadDir(r.path); err == nil && len(entries) > 0 {
		return fmt.Errorf("clone %s: %s exists and is not a git working copy", url, r.path)
	}
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(r.path)), 0o755); err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	if _, err := runGit(ctx, "", "clone", url, r.path); err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	return nil
}

// Status reports the current branch, the short HEAD sha and whether there are
// uncommitted changes. A missing working copy is reported as unconfigured,
// not as an error.
func (r *Repo) Status(ctx context.Context) (RepoStatus, error) {
	if !r.Configured() {
		return RepoStatus{}, nil
	}
	st := RepoStatus{Configured: true}

	head, err := r.head(ctx)
	if err != nil {
		return st, err
	}
	st.Head = head

	branch, err := runGit(ctx, r.path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return st, fmt.Errorf("git rev-parse: %w", err)
	}
	st.Branch = branch

	porcelain, err := runGit(ctx, r.path, "status", "--porcelain")
	if err != nil {
		return st, fmt.Errorf("git status: %w", err)
	}
	st.Dirty = porcelain != ""
	return st, nil
}

// Pull fast-forwards the working copy from its upstream and returns the new
// short HEAD sha.
func (r *Repo) Pull(ctx context.Context) (string, error) {
	if !r.Configured() {
		return "", ErrNotRepository
	}
	if _, err := runGit(ctx, r.path, "pull", "--ff-only"); err != nil {
		return "", fmt.Errorf("git pull: %w", err)
	}
	return r.head(ctx)
}

// Push stages every change, commits it with message when anything is
// staged, and pushes the current branch.
func (r *Repo) Push(ctx context.Context, message string) (PushResult, error) {
	if !r.Configured() {
		return PushResult{}, ErrNotRepository
	}
	if strings.TrimSpace(message) == "" {
		return PushResult{}, ErrEmptyMessage
	}

	if _, err := runGit(ctx, r.path, "add", "--all"); err != nil {
		return PushResult{}, fmt.Errorf("git add: %w", err)
	}

	var res PushResult
	// diff --cached --quiet exits 0 when nothing is staged.
	if _, err := runGit(ctx, r.path, "diff", "--cached", "--quiet"); err != nil {
		if _, err := runGit(ctx, r.path, "commit", "-m", message); err != nil {
			return PushResult{}, fmt.Errorf("git commit: %w", err)
		}
		res.Committed = true
	}

	if _, err := runGit(ctx, r.path, "push"); err != nil {
		return PushResult{}, fmt.Errorf("git push: %w", err)
	}

	head, err := r.head(ctx)
	if err != nil {
		return PushResult{}, err
	}
	res.Head = head
	return res, nil
}

func (r *Repo) head(ctx context.Context) (string, error) {
	head, err := runGit(ctx, r.path, "rev-parse", "--short=7", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return head, nil
}

// runGit runs git in dir and returns its trimmed stdout. On failure the
// error carries git's stderr.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}
