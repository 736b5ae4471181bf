package dataset

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ImageExt is the only file extension the walker hands downstream (case-insensitive)
const ImageExt = ".png"

// Directory is one step of a walk: a directory and its image files, sorted by name
type Directory struct {
	Path  string
	Files []string
}

// Walker discovers image files below a root directory
type Walker struct {
	root string
}

// NewWalker creates a walker rooted at root
func NewWalker(root string) *Walker {
	return &Walker{root: root}
}

// Root returns the directory the walker starts from
func (w *Walker) Root() string {
	return w.root
}

// Dirs walks the tree depth-first. A directory's own files are yielded before
// any of its subdirectories, which are visited in lexical order. The sequence
// can be ranged over any number of times; each range re-reads the filesystem.
// A read error is yielded once and ends the sequence.
func (w *Walker) Dirs() iter.Seq2[Directory, error] {
	return func(yield func(Directory, error) bool) {
		info, err := os.Stat(w.root)
		if err != nil {
			yield(Directory{}, fmt.Errorf("failed to read source directory: %w", err))
			return
		}
		if !info.IsDir() {
			yield(Directory{}, fmt.Errorf("source %s is not a directory", w.root))
			return
		}
		w.walk(w.root, yield)
	}
}

// walk returns false once the consumer stops or an error was yielded
func (w *Walker) walk(dir string, yield func(Directory, error) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		yield(Directory{}, fmt.Errorf("failed to read directory %s: %w", dir, err))
		return false
	}

	var files []string
	var subdirs []string
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, e.Name())
			continue
		}
		// symlinked directories are neither files nor followed
		if e.Type()&fs.ModeSymlink != 0 {
			if target, err := os.Stat(filepath.Join(dir, e.Name())); err == nil && target.IsDir() {
				continue
			}
		}
		if IsImage(e.Name()) {
			files = append(files, e.Name())
		}
	}
	// os.ReadDir already sorts by name; keep the contract explicit
	sort.Strings(files)
	sort.Strings(subdirs)

	if !yield(Directory{Path: dir, Files: files}, nil) {
		return false
	}

	for _, name := range subdirs {
		if !w.walk(filepath.Join(dir, name), yield) {
			return false
		}
	}
	return true
}

// IsImage reports whether name carries the image extension
func IsImage(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ImageExt)
}
