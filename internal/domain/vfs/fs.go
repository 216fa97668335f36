package vfs

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gmlportal/desktop/backend/internal/shared/paths"
)

// FS is an in-memory tree of directories and files keyed by normalized
// absolute path. Directories map to their sorted child names, files map to
// their text content.
type FS struct {
	mu    sync.RWMutex
	dirs  map[string][]string // Protected by mu
	files map[string]string   // Protected by mu
}

// NodeInfo describes a single node
type NodeInfo struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Size  int    `json:"size"`
}

// New creates a filesystem holding the starter tree
func New() *FS {
	dirs, files := seed()
	return &FS{dirs: dirs, files: files}
}

// Reset restores the starter tree
func (fs *FS) Reset() {
	dirs, files := seed()

	fs.mu.Lock()
	fs.dirs = dirs
	fs.files = files
	fs.mu.Unlock()
}

// Home returns the home directory
func (fs *FS) Home() string {
	return paths.Home
}

// IsDirectory reports whether p is a known directory
func (fs *FS) IsDirectory(p string) bool {
	p = Clean(p)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, ok := fs.dirs[p]
	return ok
}

// FileExists reports whether p is a known file
func (fs *FS) FileExists(p string) bool {
	p = Clean(p)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, ok := fs.files[p]
	return ok
}

// ListDirectory returns the sorted child names of p, or an empty slice
// when p is not a directory.
func (fs *FS) ListDirectory(p string) []string {
	p = Clean(p)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries := fs.dirs[p]
	out := make([]string, len(entries))
	copy(out, entries)
	return out
}

// ReadFile returns the content of p and whether it exists
func (fs *FS) ReadFile(p string) (string, bool) {
	p = Clean(p)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	content, ok := fs.files[p]
	return content, ok
}

// WriteFile creates or overwrites a file and registers it in its parent.
// It returns false, leaving the tree untouched, when the parent is not a
// directory or p names a directory.
func (fs *FS) WriteFile(p, content string) bool {
	p = Clean(p)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, isDir := fs.dirs[p]; isDir {
		return false
	}
	parent := GetParentPath(p)
	if _, ok := fs.dirs[parent]; !ok {
		return false
	}

	fs.files[p] = content
	fs.addEntry(parent, GetBaseName(p))
	return true
}

// DeleteFile removes a file and its parent listing entry. Missing files
// are a no-op.
func (fs *FS) DeleteFile(p string) bool {
	p = Clean(p)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.files[p]; !ok {
		return false
	}

	delete(fs.files, p)
	fs.removeEntry(GetParentPath(p), GetBaseName(p))
	return true
}

// CreateDirectory creates an empty directory and registers it in its
// parent. An existing directory is left as it is.
func (fs *FS) CreateDirectory(p string) bool {
	p = Clean(p)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.createDirectory(p)
}

// CreateDirectoryAll creates p and any missing parents. It stops at the
// first component that exists as a file.
func (fs *FS) CreateDirectoryAll(p string) bool {
	p = Clean(p)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.dirs[p]; ok {
		return true
	}

	current := paths.Root
	for _, part := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		current = paths.Join(current, part)
		if _, ok := fs.dirs[current]; ok {
			continue
		}
		if !fs.createDirectory(current) {
			return false
		}
	}
	return true
}

// RemoveDirectoryTree deletes p with every file and directory below it and
// drops p from its parent. Removing the root empties it but keeps it.
func (fs *FS) RemoveDirectoryTree(p string) bool {
	p = Clean(p)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.dirs[p]; !ok {
		return false
	}

	// Collect top-down with an explicit stack, delete bottom-up.
	var order []string
	stack := []string{p}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, dir)

		for _, name := range fs.dirs[dir] {
			child := paths.Join(dir, name)
			if _, isDir := fs.dirs[child]; isDir {
				stack = append(stack, child)
				continue
			}
			delete(fs.files, child)
		}
	}

	for i := len(order) - 1; i >= 0; i-- {
		delete(fs.dirs, order[i])
	}

	if p == paths.Root {
		fs.dirs[paths.Root] = []string{}
		return true
	}
	fs.removeEntry(GetParentPath(p), GetBaseName(p))
	return true
}

// Stat describes the node at p
func (fs *FS) Stat(p string) (NodeInfo, bool) {
	p = Clean(p)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return fs.stat(p)
}

// Walk visits root and every node below it depth-first in listing order.
// Returning false from fn skips a directory's children.
func (fs *FS) Walk(root string, fn func(info NodeInfo, depth int) bool) {
	root = Clean(root)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	info, ok := fs.stat(root)
	if !ok {
		return
	}
	fs.walk(info, 0, fn)
}

func (fs *FS) walk(info NodeInfo, depth int, fn func(NodeInfo, int) bool) {
	if !fn(info, depth) || !info.IsDir {
		return
	}
	for _, name := range fs.dirs[info.Path] {
		child, ok := fs.stat(paths.Join(info.Path, name))
		if !ok {
			continue
		}
		fs.walk(child, depth+1, fn)
	}
}

// Glob returns every node path matching a doublestar pattern, sorted.
// Relative patterns are matched against paths relative to the root.
func (fs *FS) Glob(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	absolute := strings.HasPrefix(pattern, "/")
	var matches []string
	check := func(p string) {
		name := p
		if !absolute {
			name = strings.TrimPrefix(p, "/")
		}
		if ok, _ := doublestar.Match(pattern, name); ok {
			matches = append(matches, p)
		}
	}

	for p := range fs.dirs {
		if p != paths.Root {
			check(p)
		}
	}
	for p := range fs.files {
		check(p)
	}

	sort.Strings(matches)
	return matches, nil
}

// CheckInvariants verifies that every node's parent lists it exactly once
// and every listed name exists.
func (fs *FS) CheckInvariants() error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if _, ok := fs.dirs[paths.Root]; !ok {
		return fmt.Errorf("root directory missing")
	}

	counts := make(map[string]int)
	for dir, entries := range fs.dirs {
		for _, name := range entries {
			child := paths.Join(dir, name)
			counts[child]++
			_, isDir := fs.dirs[child]
			_, isFile := fs.files[child]
			if !isDir && !isFile {
				return fmt.Errorf("%s lists missing entry %q", dir, name)
			}
		}
	}

	check := func(p string) error {
		if p == paths.Root {
			return nil
		}
		if _, ok := fs.dirs[GetParentPath(p)]; !ok {
			return fmt.Errorf("%s has no parent directory", p)
		}
		if counts[p] != 1 {
			return fmt.Errorf("%s listed %d times in its parent", p, counts[p])
		}
		return nil
	}
	for p := range fs.dirs {
		if err := check(p); err != nil {
			return err
		}
	}
	for p := range fs.files {
		if _, clash := fs.dirs[p]; clash {
			return fmt.Errorf("%s is both a file and a directory", p)
		}
		if err := check(p); err != nil {
			return err
		}
	}
	return nil
}

// Counts returns the number of directories and files
func (fs *FS) Counts() (dirs, files int) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return len(fs.dirs), len(fs.files)
}

// createDirectory must be called with mu held
func (fs *FS) createDirectory(p string) bool {
	if _, ok := fs.dirs[p]; ok {
		return false
	}
	if _, ok := fs.files[p]; ok {
		return false
	}
	parent := GetParentPath(p)
	if _, ok := fs.dirs[parent]; !ok {
		return false
	}

	fs.dirs[p] = []string{}
	fs.addEntry(parent, GetBaseName(p))
	return true
}

func (fs *FS) stat(p string) (NodeInfo, bool) {
	if _, ok := fs.dirs[p]; ok {
		return NodeInfo{Path: p, Name: GetBaseName(p), IsDir: true, Size: len(fs.dirs[p])}, true
	}
	if content, ok := fs.files[p]; ok {
		return NodeInfo{Path: p, Name: GetBaseName(p), Size: len(content)}, true
	}
	return NodeInfo{}, false
}

func (fs *FS) addEntry(dir, name string) {
	entries, ok := fs.dirs[dir]
	if !ok {
		return
	}
	fs.dirs[dir] = insertSorted(entries, name)
}

func (fs *FS) removeEntry(dir, name string) {
	entries, ok := fs.dirs[dir]
	if !ok {
		return
	}
	for i, entry := range entries {
		if entry == name {
			fs.dirs[dir] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// insertSorted adds name once, keeping the listing ordered
func insertSorted(entries []string, name string) []string {
	i := sort.Search(len(entries), func(i int) bool {
		return !nameLess(entries[i], name)
	})
	if i < len(entries) && entries[i] == name {
		return entries
	}
	entries = append(entries, "")
	copy(entries[i+1:], entries[i:])
	entries[i] = name
	return entries
}

// nameLess orders case-insensitively, falling back to byte order so the
// ordering is total.
func nameLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
