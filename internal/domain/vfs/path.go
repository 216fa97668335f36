package vfs

import (
	"strings"

	"github.com/gmlportal/desktop/backend/internal/shared/paths"
)

// ResolvePath turns user input into an absolute, normalized path.
//
// Empty input and "." resolve to cwd, "~" and "~/..." resolve against the
// home directory, absolute input is used as-is and relative input is joined
// onto cwd. The result is then normalized segment by segment: "." is
// dropped, ".." pops (popping past the root is absorbed), anything else is
// pushed. Resolving an already normalized absolute path returns it unchanged.
func ResolvePath(input, cwd string) string {
	if cwd == "" {
		cwd = paths.Home
	}

	var source string
	switch {
	case input == "" || input == ".":
		source = cwd
	case input == "~":
		source = paths.Home
	case strings.HasPrefix(input, "~/"):
		source = paths.Home + "/" + input[2:]
	case strings.HasPrefix(input, "/"):
		source = input
	default:
		source = cwd + "/" + input
	}

	return Clean(source)
}

// Clean normalizes a path without home expansion. Relative paths are
// treated as rooted at "/".
func Clean(p string) string {
	stack := make([]string, 0, strings.Count(p, "/")+1)
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, part)
		}
	}

	if len(stack) == 0 {
		return paths.Root
	}
	return "/" + strings.Join(stack, "/")
}

// GetParentPath returns the directory containing p. The parent of a
// top-level path, and of the root itself, is the root.
func GetParentPath(p string) string {
	trimmed := trimTrailing(p)
	if trimmed == paths.Root {
		return paths.Root
	}

	i := strings.LastIndex(trimmed, "/")
	if i <= 0 {
		return paths.Root
	}
	return trimmed[:i]
}

// GetBaseName returns the last element of p, or "/" for the root.
func GetBaseName(p string) string {
	trimmed := trimTrailing(p)
	if trimmed == paths.Root {
		return paths.Root
	}

	i := strings.LastIndex(trimmed, "/")
	return trimmed[i+1:]
}

func trimTrailing(p string) string {
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return paths.Root
	}
	return trimmed
}
