package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NewFilesystemLoader returns a loader for an override directory on disk.
// Symlinks inside dir may not lead outside it.
func NewFilesystemLoader(dir string) (*FSLoader, error) {
	root, err := resolveRoot(dir)
	if err != nil {
		return nil, err
	}
	l := NewFSLoader(os.DirFS(root))
	l.guard = func(rel string) error {
		return contained(root, filepath.Join(root, filepath.FromSlash(rel)))
	}
	return l, nil
}

// resolveRoot returns the absolute, symlink-free form of dir after checking
// it is a readable directory.
func resolveRoot(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidBasePath, abs, err)
	}
	if _, err := os.ReadDir(root); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidBasePath, root, err)
	}
	return root, nil
}

// contained checks that target, after following symlinks, lies under root.
// A target that does not exist passes; reading it reports ErrNotFound.
func contained(root, target string) error {
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		return nil
	}
	if !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrOutsideBase, target)
	}
	return nil
}
