// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

const (
	gitPrefix    = "git+"
	gitSuffix    = ".git"
	sshUserHost  = "git@"
	gitCacheName = "git"
)

type (
	// GitRepository is a repository cloned from a git remote into a
	// local cache directory.
	GitRepository struct {
		*DirRepository
		// URL is the remote as passed to git.
		URL string
	}

	// OpenOption configures Open.
	OpenOption func(*openOptions)

	openOptions struct {
		cacheDir string
		logger   *log.Logger
	}
)

// WithCacheDir sets the directory git repositories are cloned into.
func WithCacheDir(dir string) OpenOption {
	return func(o *openOptions) {
		o.cacheDir = dir
	}
}

// WithOpenLogger sets the logger used while opening repositories.
func WithOpenLogger(logger *log.Logger) OpenOption {
	return func(o *openOptions) {
		o.logger = logger
	}
}

// GitURL reports whether location names a git remote and returns the URL
// to hand to git. Accepted forms are git+https://, git+ssh://, scp-like
// git@host:path and any URL ending in .git.
func GitURL(location string) (string, bool) {
	switch {
	case strings.HasPrefix(location, gitPrefix):
		return strings.TrimPrefix(location, gitPrefix), true
	case strings.HasPrefix(location, sshUserHost) && strings.Contains(location, ":"):
		return location, true
	case strings.Contains(location, "://") && strings.HasSuffix(location, gitSuffix):
		return location, true
	default:
		return "", false
	}
}

// CachePath returns the clone directory for gitURL below cacheDir.
// e.g. "https://github.com/user/repo.git" -> "<cacheDir>/git/github.com/user/repo"
func CachePath(cacheDir, gitURL string) string {
	path := gitURL
	if i := strings.Index(path, "://"); i >= 0 {
		path = path[i+3:]
	}
	path = strings.TrimPrefix(path, sshUserHost)
	path = strings.TrimSuffix(path, gitSuffix)
	path = strings.ReplaceAll(path, ":", "/")

	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s == "" || s == "." || s == ".." {
			continue
		}
		segments = append(segments, s)
	}
	return filepath.Join(append([]string{cacheDir, gitCacheName}, segments...)...)
}

func openGit(ctx context.Context, location, gitURL string, o openOptions) (*GitRepository, error) {
	if o.cacheDir == "" {
		return nil, fmt.Errorf("%w: %s (no cache directory for git clones)", ErrUnsupportedRepository, location)
	}
	logger := o.logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	dest := CachePath(o.cacheDir, gitURL)
	auth := gitAuth(gitURL)

	repo, err := git.PlainOpen(dest)
	if err != nil {
		logger.Debug("cloning repository", "url", gitURL, "dest", dest)
		if err := clone(ctx, gitURL, dest, auth); err != nil {
			return nil, fmt.Errorf("failed to clone repository %s: %w", gitURL, err)
		}
	} else if err := pull(ctx, repo, auth); err != nil {
		// A stale clone is still usable offline.
		logger.Warn("failed to update repository", "url", gitURL, "error", err)
	}

	return &GitRepository{
		DirRepository: &DirRepository{location: location, root: dest},
		URL:           gitURL,
	}, nil
}

func clone(ctx context.Context, gitURL, dest string, auth transport.AuthMethod) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:   gitURL,
		Auth:  auth,
		Depth: 1,
	})
	if err != nil {
		_ = os.RemoveAll(dest)
		return err
	}
	return nil
}

func pull(ctx context.Context, repo *git.Repository, auth transport.AuthMethod) error {
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName: git.DefaultRemoteName,
		Auth:       auth,
		Depth:      1,
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

// gitAuth picks credentials for gitURL: an SSH key from ~/.ssh for SSH
// remotes, a token from the environment for HTTPS remotes.
func gitAuth(gitURL string) transport.AuthMethod {
	switch {
	case strings.HasPrefix(gitURL, sshUserHost), strings.HasPrefix(gitURL, "ssh://"):
		return sshAuth()
	case strings.HasPrefix(gitURL, httpScheme), strings.HasPrefix(gitURL, httpsScheme):
		return httpAuth()
	default:
		return nil
	}
}

func sshAuth() transport.AuthMethod {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	for _, key := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyPath := filepath.Join(homeDir, ".ssh", key)
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}
		if auth, err := ssh.NewPublicKeysFromFile("git", keyPath, ""); err == nil {
			return auth
		}
	}
	return nil
}

func httpAuth() transport.AuthMethod {
	tokens := []struct {
		env  string
		user string
	}{
		{"GITHUB_TOKEN", "x-access-token"},
		{"GITLAB_TOKEN", "gitlab-ci-token"},
		{"GIT_TOKEN", "git"},
	}
	for _, t := range tokens {
		if token := os.Getenv(t.env); token != "" {
			return &http.BasicAuth{Username: t.user, Password: token}
		}
	}
	return nil
}
