package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/compose-network/random-winner-game/internal/logger"
)

// Repository represents a git repository to clone
type Repository struct {
	Name string
	URL  string
	Ref  string // branch or tag
}

// Cloner handles git repository operations
type Cloner struct {
	binary string
	logger *slog.Logger
}

// NewCloner creates a new git cloner
func NewCloner() *Cloner {
	return &Cloner{binary: "git", logger: logger.Named("git_cloner")}
}

// Clone shallow-clones repo into destDir/repo.Name and returns the checkout
// path. An existing checkout is reused as is.
func (c *Cloner) Clone(ctx context.Context, destDir string, repo Repository) (string, error) {
	repoPath := filepath.Join(destDir, repo.Name)

	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		c.logger.With("name", repo.Name).With("path", repoPath).Info("repository already cloned, skipping")
		return repoPath, nil
	}

	c.logger.With("name", repo.Name).With("url", repo.URL).With("ref", repo.Ref).Info("cloning repository")

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.binary, "clone", "--depth", "1", "--branch", repo.Ref, repo.URL, repoPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git clone of %s failed: %w", repo.URL, err)
	}

	c.logger.With("name", repo.Name).Info("repository cloned successfully")
	return repoPath, nil
}
