/*
Package vfs implements the in-memory filesystem behind the simulated terminal.

# Model

The tree is two flat maps keyed by normalized absolute path: directories map
to their sorted child names, files map to their text content. After every
mutation each non-root node's parent exists and lists the node's base name
exactly once, and every listed name is a real node. The root always exists.

# Paths

ResolvePath, GetParentPath and GetBaseName are pure functions. ResolvePath
expands "~", joins relative input onto the working directory and normalizes
"." and ".." segments; ".." past the root is absorbed rather than rejected.

# Failure semantics

Unknown paths are never errors: predicates return false, ListDirectory
returns an empty slice, ReadFile reports absence, and mutations on missing
targets are no-ops that return false.

	fs := vfs.New()
	p := vfs.ResolvePath("projects/../notes.txt", fs.Home())
	content, ok := fs.ReadFile(p)
*/
package vfs
