// Package paths provides the standard layout of the simulated filesystem.
package paths

import "strings"

const (
	Root      = "/"
	Separator = "/"
)

// Top-level directories
const (
	HomeRoot = "/home"
	Etc      = "/etc"
	Var      = "/var"
	Tmp      = "/tmp"
)

// User layout
const (
	User     = "gml"
	Home     = "/home/gml"
	Projects = "/home/gml/projects"
)

// StandardDirectories returns every directory of the starter tree, parents
// before children.
func StandardDirectories() []string {
	return []string{
		Root,
		Etc,
		HomeRoot,
		Tmp,
		Var,
		Home,
		Projects,
		Projects + "/portal-ui",
		Projects + "/tools-api",
		Projects + "/wiki-core",
	}
}

// Join joins a directory and a child name without normalizing either.
func Join(dir, name string) string {
	if dir == Root {
		return Root + name
	}
	return dir + Separator + name
}

// IsUnder reports whether p is strictly below dir.
func IsUnder(p, dir string) bool {
	if dir == Root {
		return p != Root && strings.HasPrefix(p, Root)
	}
	return strings.HasPrefix(p, dir+Separator)
}

// Display abbreviates the home directory to "~" for prompts.
func Display(p string) string {
	if p == Home {
		return "~"
	}
	if IsUnder(p, Home) {
		return "~" + strings.TrimPrefix(p, Home)
	}
	return p
}
