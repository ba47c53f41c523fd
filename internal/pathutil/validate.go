// Package pathutil provides path helpers for files walkstat reads and writes.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RedactPath reduces a full path to .../<parent>/<basename> for error messages.
// For example, "/home/user/.walkstat/config.yaml" becomes ".../.walkstat/config.yaml".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	if parent == "." || parent == string(filepath.Separator) {
		return filepath.Base(cleaned)
	}
	return ".../" + parent + "/" + filepath.Base(cleaned)
}

// ResolveOutput returns the absolute, symlink-resolved form of path after
// checking that it lands inside one of allowedDirs. The file itself need not
// exist yet; if it is a symlink, its target is what gets checked and
// returned.
func ResolveOutput(path string, allowedDirs []string) (string, error) {
	switch {
	case path == "":
		return "", fmt.Errorf("output path is empty")
	case len(allowedDirs) == 0:
		return "", fmt.Errorf("no output directories configured")
	case strings.ContainsRune(path, '\x00'):
		return "", fmt.Errorf("output path contains null byte")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving output path: %w", err)
	}
	dir, err := resolveExisting(filepath.Dir(abs))
	if err != nil {
		return "", err
	}
	resolved := filepath.Join(dir, filepath.Base(abs))

	// The file name itself may be a symlink; confine its target instead.
	if fi, err := os.Lstat(resolved); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(resolved)
		if err != nil {
			return "", fmt.Errorf("output path %q is a dangling symlink", RedactPath(abs))
		}
		resolved = target
	}

	for _, allowed := range allowedDirs {
		allowedAbs, err := filepath.Abs(allowed)
		if err != nil {
			continue
		}
		root, err := resolveExisting(allowedAbs)
		if err != nil {
			continue
		}
		if within(resolved, root) {
			return resolved, nil
		}
	}

	return "", fmt.Errorf("output path %q is outside allowed directories", RedactPath(abs))
}

// resolveExisting evaluates symlinks on the deepest existing ancestor of dir
// and re-appends the missing tail.
func resolveExisting(dir string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("cannot resolve path: %s", RedactPath(dir))
	}
	resolvedParent, err := resolveExisting(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(dir)), nil
}

// within reports whether path is base or lies below it.
func within(path, base string) bool {
	return path == base || strings.HasPrefix(path, base+string(os.PathSeparator))
}
