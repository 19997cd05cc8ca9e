// Package git detects the branch under build when the pipeline does not
// supply one through flags or environment variables.
package git

import (
	"context"
	"fmt"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Engine resolves branch information from a local repository using go-git.
type Engine struct {
	repoDir string
}

// NewEngine constructs a Git engine for the provided repository directory.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

// CurrentBranch returns the short name of the checked-out branch.
func (e *Engine) CurrentBranch(ctx context.Context) (string, error) {
	name, err := e.head()
	if err != nil {
		return "", err
	}
	if name.IsBranch() {
		return name.Short(), nil
	}
	return "", fmt.Errorf("detached HEAD")
}

// CurrentRef returns the full ref of the checked-out branch
// (e.g. refs/heads/feature/login).
func (e *Engine) CurrentRef(ctx context.Context) (string, error) {
	name, err := e.head()
	if err != nil {
		return "", err
	}
	if name.IsBranch() {
		return name.String(), nil
	}
	return "", fmt.Errorf("detached HEAD")
}

func (e *Engine) head() (plumbing.ReferenceName, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Name(), nil
}
