// Package git records which revision a property file was read from, so a
// check report can name the commit it validated.
package git

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Revision describes the repository state a file was loaded from
type Revision struct {
	// Root is the worktree root directory
	Root string `json:"root"`
	// CommitHash is the current HEAD commit hash
	CommitHash string `json:"commit"`
	// Branch is the current branch name, empty when HEAD is detached
	Branch string `json:"branch,omitempty"`
	// Tags point at the HEAD commit
	Tags []string `json:"tags,omitempty"`
	// Modified reports uncommitted changes to the file itself
	Modified bool `json:"modified"`
}

// Short returns the abbreviated commit hash with a "-dirty" suffix when
// the file has local changes.
func (r *Revision) Short() string {
	hash := r.CommitHash
	if len(hash) > 7 {
		hash = hash[:7]
	}
	if r.Modified {
		return hash + "-dirty"
	}
	return hash
}

// FileRevision opens the repository containing path, seeking upwards if
// necessary, and reports its HEAD along with the file's worktree status.
func FileRevision(path string) (*Revision, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %q: %w", path, err)
	}

	repo, err := git.PlainOpenWithOptions(filepath.Dir(abs), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to find a Git repository that path %q belongs to: %w", path, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree for %q: %w", path, err)
	}

	headRef, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference for %q: %w", path, err)
	}

	tags, err := tagsAt(repo, headRef.Hash())
	if err != nil {
		return nil, err
	}

	root := worktree.Filesystem.Root()
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return nil, fmt.Errorf("failed to locate %q in worktree %q: %w", path, root, err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree status for %q: %w", path, err)
	}
	fileStatus, changed := status[filepath.ToSlash(rel)]

	rev := &Revision{
		Root:       root,
		CommitHash: headRef.Hash().String(),
		Tags:       tags,
		Modified:   changed && (fileStatus.Worktree != git.Unmodified || fileStatus.Staging != git.Unmodified),
	}
	if headRef.Name().IsBranch() {
		rev.Branch = headRef.Name().Short()
	}
	return rev, nil
}

func tagsAt(repo *git.Repository, hash plumbing.Hash) ([]string, error) {
	tagRefs, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	var tags []string
	err = tagRefs.ForEach(func(ref *plumbing.Reference) error {
		revHash, err := repo.ResolveRevision(plumbing.Revision(ref.Name()))
		if err != nil {
			return fmt.Errorf("failed to resolve tag %q: %w", ref.Name().Short(), err)
		}
		if *revHash == hash {
			tags = append(tags, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over tags: %w", err)
	}
	return tags, nil
}
