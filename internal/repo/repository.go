// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/invowk/modrun/internal/launcher"
	"github.com/invowk/modrun/pkg/semver"
)

const (
	// HomeEnv overrides the modrun data directory.
	HomeEnv = "MODRUN_HOME"
	// SourceOutputDir is the repository relative to the working directory
	// that is searched by default.
	SourceOutputDir = "modules"

	dataDirName  = ".modrun"
	repoDirName  = "repo"
	fileScheme   = "file://"
	httpScheme   = "http://"
	httpsScheme  = "https://"
	defaultDirFS = launcher.DefaultModule
)

type (
	// Repository is a readable module repository.
	Repository interface {
		// Location returns the location the repository was opened from.
		Location() string
		// Versions lists the version directories of module name.
		Versions(name string) ([]string, error)
		// ModuleRoot returns the root of module name at version, and
		// whether it exists. version is ignored for the default module.
		ModuleRoot(name, version string) (string, bool)
	}

	// DirRepository is a repository on the local filesystem.
	DirRepository struct {
		location string
		root     string
	}
)

// NewDirRepository returns a repository rooted at dir.
func NewDirRepository(dir string) *DirRepository {
	return &DirRepository{location: dir, root: dir}
}

// Location implements Repository.
func (r *DirRepository) Location() string { return r.location }

// Root returns the directory the repository is read from.
func (r *DirRepository) Root() string { return r.root }

// Versions implements Repository. A missing module yields no versions.
func (r *DirRepository) Versions(name string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list versions of %s in %s: %w", name, r.location, err)
	}

	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// ModuleRoot implements Repository.
func (r *DirRepository) ModuleRoot(name, version string) (string, bool) {
	dir := filepath.Join(r.root, name, version)
	if name == launcher.DefaultModule {
		dir = filepath.Join(r.root, defaultDirFS)
	} else if version == "" {
		return "", false
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}

// Open opens the repository at location. Git locations are cloned into
// cacheDir, or refreshed when already cloned.
func Open(ctx context.Context, location string, opts ...OpenOption) (Repository, error) {
	o := openOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	if gitURL, ok := GitURL(location); ok {
		r, err := openGit(ctx, location, gitURL, o)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	switch {
	case strings.HasPrefix(location, fileScheme):
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedRepository, location, err)
		}
		return &DirRepository{location: location, root: filepath.FromSlash(u.Path)}, nil
	case strings.HasPrefix(location, httpScheme), strings.HasPrefix(location, httpsScheme):
		return nil, fmt.Errorf("%w: %s (only git repositories can be read over the network)", ErrUnsupportedRepository, location)
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRepository, location)
	default:
		return NewDirRepository(location), nil
	}
}

// DefaultRepositories returns the built-in repository locations: the
// source output directory and the user repository.
func DefaultRepositories() []string {
	repos := []string{SourceOutputDir}
	if home := DataDir(); home != "" {
		repos = append(repos, filepath.Join(home, repoDirName))
	}
	return repos
}

// DataDir returns $MODRUN_HOME, or ~/.modrun when it is unset. It returns
// "" when neither can be determined.
func DataDir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, dataDirName)
}

// versionRoot is a module version found in a repository.
type versionRoot struct {
	version string
	root    string
}

// selectVersion picks the module root for name and the requested version.
//
// No version selects the highest version across all repositories. A version
// naming an existing directory selects it from the first repository holding
// it. Anything else is matched as a constraint.
func selectVersion(repos []Repository, name, version string) (versionRoot, error) {
	if name == launcher.DefaultModule {
		for _, r := range repos {
			if root, ok := r.ModuleRoot(name, ""); ok {
				return versionRoot{root: root}, nil
			}
		}
		return versionRoot{}, notFound(repos, name, "")
	}

	if version != "" {
		for _, r := range repos {
			if root, ok := r.ModuleRoot(name, version); ok {
				return versionRoot{version: version, root: root}, nil
			}
		}
	}

	available := make(map[string]string)
	var names []string
	for _, r := range repos {
		versions, err := r.Versions(name)
		if err != nil {
			return versionRoot{}, err
		}
		for _, v := range versions {
			if _, seen := available[v]; seen {
				continue
			}
			if root, ok := r.ModuleRoot(name, v); ok {
				available[v] = root
				names = append(names, v)
			}
		}
	}
	if len(names) == 0 {
		return versionRoot{}, notFound(repos, name, version)
	}

	var selected string
	switch {
	case version == "":
		selected = semver.Latest(names)
		if selected == "" {
			sort.Strings(names)
			selected = names[len(names)-1]
		}
	case semver.IsConstraint(version):
		v, err := semver.Resolve(version, names)
		if err != nil {
			return versionRoot{}, fmt.Errorf("%w: %s: %w", ErrNoMatchingVersion, name, err)
		}
		selected = v
	default:
		return versionRoot{}, fmt.Errorf("%w: %s/%s (available: %s)", ErrNoMatchingVersion, name, version, strings.Join(semver.Sort(names), ", "))
	}
	return versionRoot{version: selected, root: available[selected]}, nil
}

func notFound(repos []Repository, name, version string) error {
	searched := make([]string, len(repos))
	for i, r := range repos {
		searched[i] = r.Location()
	}
	return &NotFoundError{Name: name, Version: version, Searched: searched}
}
