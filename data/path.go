package data

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrRootNotFound when no parent directory holds the marker
var ErrRootNotFound = errors.New("project root not found")

// ProjectPath resolves rel, written with either separator, against root
func ProjectPath(root, rel string) (string, error) {
	rel = strings.NewReplacer("\\", string(filepath.Separator), "/", string(filepath.Separator)).Replace(rel)
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel), nil
	}
	return filepath.Abs(filepath.Join(root, rel))
}

// FindProjectRoot walks up from start until a directory containing marker is found
func FindProjectRoot(start, marker string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Wrapf(ErrRootNotFound, "no %s above %s", marker, start)
		}
		dir = parent
	}
}
