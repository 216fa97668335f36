package vfs

import "github.com/gmlportal/desktop/backend/internal/shared/paths"

// seedFiles is the fixed starter content of the home directory
var seedFiles = map[string]string{
	paths.Home + "/notes.txt": "Portal MVP\n- desktop ui\n- launcher\n- fake terminal",
	paths.Home + "/todo.md":   "# TODO\n- health api aggregator\n- add auth\n- add audit log",
	paths.Home + "/.bashrc":   "export TERM=xterm-256color\nalias ll=\"ls -la\"",
}

// seed builds the starter tree. Every listed name is a real node.
func seed() (map[string][]string, map[string]string) {
	dirs := map[string][]string{paths.Root: {}}
	files := make(map[string]string, len(seedFiles))

	for _, dir := range paths.StandardDirectories() {
		if dir == paths.Root {
			continue
		}
		dirs[dir] = []string{}
		parent := GetParentPath(dir)
		dirs[parent] = insertSorted(dirs[parent], GetBaseName(dir))
	}

	for path, content := range seedFiles {
		files[path] = content
		parent := GetParentPath(path)
		dirs[parent] = insertSorted(dirs[parent], GetBaseName(path))
	}

	return dirs, files
}
