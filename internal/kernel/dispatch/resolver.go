package dispatch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agentmesh/swarmkernel/internal/kernel/kerrors"
)

// sharedBase is the conventional multi-tenant project-root parent.
const sharedBase = "/projects/"

// Resolver resolves a tool's path argument against a project root,
// enforcing containment: every resolved path must remain under Root.
// Quote-stripping and shared-base-prefix normalisation let callers pass
// either a project-relative path or an absolute path rooted at Root or
// at the shared /projects/ base.
type Resolver struct {
	Root string
}

// Resolve normalises and validates path, returning the absolute,
// canonical target. Fails with kerrors.ErrPathTraversal if the result
// would escape Root.
func (r Resolver) Resolve(path string) (string, error) {
	clean := strings.TrimSpace(path)
	clean = strings.Trim(clean, `"'`)

	rootAbs, err := filepath.Abs(r.Root)
	if err != nil {
		return "", kerrors.Wrap(kerrors.KindToolFailure, err)
	}

	if filepath.IsAbs(clean) {
		switch {
		case strings.HasPrefix(clean, rootAbs):
			clean = strings.TrimPrefix(clean, rootAbs)
		case strings.HasPrefix(clean, sharedBase):
			clean = strings.TrimPrefix(clean, sharedBase)
			if idx := strings.Index(clean, "/"); idx >= 0 {
				clean = clean[idx+1:]
			} else {
				clean = ""
			}
		}
	}

	target := filepath.Join(rootAbs, clean)
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return "", kerrors.Wrap(kerrors.KindToolFailure, err)
	}

	rel, err := filepath.Rel(rootAbs, targetAbs)
	if err != nil {
		return "", kerrors.ErrPathTraversal
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", kerrors.ErrPathTraversal
	}
	return targetAbs, nil
}

// CheckRoot verifies the project root exists and is readable (
// "The project root is verified readable before dispatch").
func (r Resolver) CheckRoot() error {
	info, err := os.Stat(r.Root)
	if err != nil || !info.IsDir() {
		return kerrors.ErrProjectInaccessible
	}
	return nil
}
