// Package paths provides standardized paths for the simulated filesystem.
//
// # Directory Structure
//
//	/
//	├── etc/
//	├── home/
//	│   └── gml/            (home directory, "~")
//	│       ├── .bashrc
//	│       ├── notes.txt
//	│       ├── todo.md
//	│       └── projects/
//	│           ├── portal-ui/
//	│           ├── tools-api/
//	│           └── wiki-core/
//	├── tmp/
//	└── var/
//
// # Usage
//
//	import "github.com/gmlportal/desktop/backend/internal/shared/paths"
//
//	prompt := paths.Display(cwd) // "~/projects"
package paths
