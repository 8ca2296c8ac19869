package sync

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// GitDestination commits the catalog export into a dedicated clone and
// pushes it upstream.
type GitDestination struct {
	repo   *Repo
	file   string // relative to the clone root
	branch string // checked out before each write when set
}

func NewGitDestination(path, file, branch string) *GitDestination {
	return &GitDestination{repo: NewRepo(path), file: file, branch: branch}
}

func (d *GitDestination) String() string {
	return "git:" + filepath.Join(d.repo.Path(), d.file)
}

// Write replaces the export file and pushes a commit when the exported
// records changed. A new header timestamp alone touches nothing.
func (d *GitDestination) Write(ctx context.Context, data []byte) error {
	if !d.repo.Configured() {
		return fmt.Errorf("git backup %s: %w", d.repo.Path(), ErrNotRepository)
	}
	if d.branch != "" {
		if _, err := runGit(ctx, d.repo.Path(), "checkout", d.branch); err != nil {
			return fmt.Errorf("git checkout %s: %w", d.branch, err)
		}
	}
	// A branch without an upstream yet has nothing to pull.
	_, _ = d.repo.Pull(ctx)

	target := filepath.Join(d.repo.Path(), d.file)
	if prev, err := os.ReadFile(target); err == nil && bytes.Equal(catalogBody(prev), catalogBody(data)) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	if _, err := d.repo.Push(ctx, backupMessage(data)); err != nil {
		return fmt.Errorf("git backup: %w", err)
	}
	return nil
}

// backupMessage summarizes an export from its header line.
func backupMessage(data []byte) string {
	h, ok := parseHeader(data)
	if !ok {
		return "backup: catalog export"
	}
	return fmt.Sprintf("backup: %d applications, %d entries", h.ApplicationCount, h.EntryCount)
}

// parseHeader decodes the first line of an export.
func parseHeader(data []byte) (header, bool) {
	line, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()
	var h header
	if json.Unmarshal(line, &h) != nil || h.Type != "header" {
		return header{}, false
	}
	return h, true
}
