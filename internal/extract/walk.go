package extract

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// skipDirs are directory names never descended into: build caches, virtual
// environments, and vendored trees. Hidden entries are skipped separately.
var skipDirs = map[string]bool{
	"__pycache__":  true,
	"venv":         true,
	"node_modules": true,
	"build":        true,
	"dist":         true,
}

// walker performs the recursive filesystem traversals behind the decorator
// scan and the parameter search. Traversal is iterative with an explicit
// stack, so arbitrarily deep trees cannot overflow the goroutine stack.
// Unreadable directories are skipped, not fatal.
type walker struct {
	ignore []glob.Glob
}

// newWalker compiles the configured ignore patterns. Patterns match against
// slash-separated paths relative to the walk root.
func newWalker(ignorePatterns []string) (*walker, error) {
	w := &walker{}
	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, syntaxf("invalid ignore pattern %q: %v", pattern, err)
		}
		w.ignore = append(w.ignore, g)
	}
	return w, nil
}

// walkFiles calls fn for every regular file under root that survives the
// skip rules, in a deterministic order within each directory. fn returning
// filepath.SkipAll stops the walk without error.
func (w *walker) walkFiles(ctx context.Context, root string, fn func(path string) error) error {
	stack := []string{root}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}

			path := filepath.Join(dir, name)
			if entry.IsDir() {
				if skipDirs[name] || w.ignored(root, path) {
					continue
				}
				stack = append(stack, path)
				continue
			}

			if w.ignored(root, path) {
				continue
			}
			if err := fn(path); err != nil {
				if err == filepath.SkipAll {
					return nil
				}
				return err
			}
		}
	}

	return nil
}

// subtrees returns root's direct child directories that survive the skip
// rules, for callers that fan the walk out across subtrees. Files directly
// under root are returned separately.
func (w *walker) subtrees(root string) (dirs []string, files []string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(root, name)
		if entry.IsDir() {
			if skipDirs[name] || w.ignored(root, path) {
				continue
			}
			dirs = append(dirs, path)
			continue
		}
		if !w.ignored(root, path) {
			files = append(files, path)
		}
	}
	return dirs, files
}

func (w *walker) ignored(root, path string) bool {
	if len(w.ignore) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range w.ignore {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
