package terminal

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"

	"github.com/gmlportal/desktop/backend/internal/domain/vfs"
	"github.com/gmlportal/desktop/backend/internal/shared/paths"
)

// commandFunc runs with the session lock held
type commandFunc func(s *Session, args []string) Output

// redirectFunc is a command that may write its output to a file
type redirectFunc func(s *Session, args []string, out *redirect) Output

var commands = map[string]commandFunc{
	"pwd":     cmdPwd,
	"cd":      cmdCd,
	"ls":      cmdLs,
	"cat":     cmdCat,
	"touch":   cmdTouch,
	"mkdir":   cmdMkdir,
	"rm":      cmdRm,
	"rmdir":   cmdRmdir,
	"tree":    cmdTree,
	"find":    cmdFind,
	"file":    cmdFile,
	"whoami":  cmdWhoami,
	"date":    cmdDate,
	"history": cmdHistory,
	"clear":   cmdClear,
	"help":    cmdHelp,
}

var redirectable = map[string]redirectFunc{
	"echo": cmdEcho,
}

var easterEggs = map[string]commandFunc{
	"sudo": func(s *Session, _ []string) Output {
		return s.output(ExitFailure, paths.User+" is not in the sudoers file. This incident will be reported.")
	},
	"matrix": func(s *Session, _ []string) Output {
		return s.output(ExitOK, "Wake up, "+paths.User+"...", "The Matrix has you.")
	},
}

var usage = []string{
	"pwd                      print working directory",
	"cd [dir]                 change directory (default ~)",
	"ls [-al] [path...]       list directory contents",
	"cat file...              print files",
	"echo text [>|>> file]    print or write text",
	"touch file...            create empty files",
	"mkdir [-p] dir...        create directories",
	"rm [-rf] path...         remove files or directories",
	"rmdir dir...             remove empty directories",
	"tree [path]              show a directory tree",
	"find [path] [-name pat] [-type f|d]",
	"file path...             detect file type",
	"whoami, date, history, clear, help",
}

func cmdPwd(s *Session, _ []string) Output {
	return s.output(ExitOK, s.cwd)
}

func cmdCd(s *Session, args []string) Output {
	if len(args) > 1 {
		return s.output(ExitFailure, "cd: too many arguments")
	}

	operand := "~"
	if len(args) == 1 {
		operand = args[0]
	}
	target := s.resolve(operand)

	switch {
	case s.fs.IsDirectory(target):
		s.cwd = target
		return s.output(ExitOK)
	case s.fs.FileExists(target):
		return s.output(ExitFailure, "cd: not a directory: "+operand)
	default:
		return s.output(ExitFailure, "cd: no such file or directory: "+operand)
	}
}

func cmdLs(s *Session, args []string) Output {
	flags, operands := splitFlags(args)
	for f := range flags {
		if f != 'a' && f != 'l' {
			return s.output(ExitUsage, fmt.Sprintf("ls: invalid option -- '%c'", f))
		}
	}
	if len(operands) == 0 {
		operands = []string{"."}
	}

	var lines []string
	code := ExitOK
	for i, operand := range operands {
		p := s.resolve(operand)

		if info, ok := s.fs.Stat(p); ok && !info.IsDir {
			if flags['l'] {
				lines = append(lines, longEntry(info, operand))
			} else {
				lines = append(lines, operand)
			}
			continue
		}
		if !s.fs.IsDirectory(p) {
			lines = append(lines, fmt.Sprintf("ls: cannot access '%s': No such file or directory", operand))
			code = ExitUsage
			continue
		}

		if len(operands) > 1 {
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, operand+":")
		}

		var names []string
		for _, name := range s.fs.ListDirectory(p) {
			if strings.HasPrefix(name, ".") && !flags['a'] {
				continue
			}
			info, ok := s.fs.Stat(paths.Join(p, name))
			if !ok {
				continue
			}
			if flags['l'] {
				lines = append(lines, longEntry(info, name))
				continue
			}
			if info.IsDir {
				name += "/"
			}
			names = append(names, name)
		}
		if len(names) > 0 {
			lines = append(lines, strings.Join(names, "  "))
		}
	}
	return s.output(code, lines...)
}

func cmdCat(s *Session, args []string) Output {
	if len(args) == 0 {
		return s.output(ExitUsage, "cat: missing file operand")
	}

	var lines []string
	code := ExitOK
	for _, operand := range args {
		p := s.resolve(operand)
		content, ok := s.fs.ReadFile(p)
		switch {
		case ok:
			lines = append(lines, splitLines(content)...)
		case s.fs.IsDirectory(p):
			lines = append(lines, "cat: "+operand+": Is a directory")
			code = ExitFailure
		default:
			lines = append(lines, "cat: "+operand+": No such file or directory")
			code = ExitFailure
		}
	}
	return s.output(code, lines...)
}

func cmdEcho(s *Session, args []string, out *redirect) Output {
	text := strings.Join(args, " ")
	if out == nil {
		return s.output(ExitOK, text)
	}

	op, operand := out.op, out.target
	p := s.resolve(operand)

	if s.fs.IsDirectory(p) {
		return s.output(ExitFailure, "sh: "+operand+": Is a directory")
	}

	content := text + "\n"
	if op == ">>" {
		if existing, ok := s.fs.ReadFile(p); ok {
			if existing != "" && !strings.HasSuffix(existing, "\n") {
				existing += "\n"
			}
			content = existing + content
		}
	}
	if !s.fs.WriteFile(p, content) {
		return s.output(ExitFailure, "sh: "+operand+": No such file or directory")
	}
	return s.output(ExitOK)
}

func cmdTouch(s *Session, args []string) Output {
	if len(args) == 0 {
		return s.output(ExitUsage, "touch: missing file operand")
	}

	var lines []string
	code := ExitOK
	for _, operand := range args {
		p := s.resolve(operand)
		if s.fs.FileExists(p) || s.fs.IsDirectory(p) {
			continue
		}
		if !s.fs.WriteFile(p, "") {
			lines = append(lines, fmt.Sprintf("touch: cannot touch '%s': No such file or directory", operand))
			code = ExitFailure
		}
	}
	return s.output(code, lines...)
}

func cmdMkdir(s *Session, args []string) Output {
	flags, operands := splitFlags(args)
	if len(operands) == 0 {
		return s.output(ExitUsage, "mkdir: missing operand")
	}

	var lines []string
	code := ExitOK
	for _, operand := range operands {
		p := s.resolve(operand)

		var failure string
		switch {
		case s.fs.FileExists(p):
			failure = "File exists"
		case s.fs.IsDirectory(p):
			if !flags['p'] {
				failure = "File exists"
			}
		case flags['p']:
			if !s.fs.CreateDirectoryAll(p) {
				failure = "Not a directory"
			}
		case !s.fs.CreateDirectory(p):
			failure = "No such file or directory"
		}

		if failure != "" {
			lines = append(lines, fmt.Sprintf("mkdir: cannot create directory '%s': %s", operand, failure))
			code = ExitFailure
		}
	}
	return s.output(code, lines...)
}

func cmdRm(s *Session, args []string) Output {
	flags, operands := splitFlags(args)
	recursive := flags['r'] || flags['R']
	if len(operands) == 0 {
		return s.output(ExitUsage, "rm: missing operand")
	}

	var lines []string
	code := ExitOK
	for _, operand := range operands {
		p := s.resolve(operand)

		switch {
		case p == paths.Root:
			lines = append(lines, "rm: refusing to remove '/'")
			code = ExitFailure
		case s.fs.FileExists(p):
			s.fs.DeleteFile(p)
		case s.fs.IsDirectory(p):
			if !recursive {
				lines = append(lines, fmt.Sprintf("rm: cannot remove '%s': Is a directory", operand))
				code = ExitFailure
				continue
			}
			s.fs.RemoveDirectoryTree(p)
		case !flags['f']:
			lines = append(lines, fmt.Sprintf("rm: cannot remove '%s': No such file or directory", operand))
			code = ExitFailure
		}
	}
	s.fixCwd()
	return s.output(code, lines...)
}

func cmdRmdir(s *Session, args []string) Output {
	if len(args) == 0 {
		return s.output(ExitUsage, "rmdir: missing operand")
	}

	var lines []string
	code := ExitOK
	for _, operand := range args {
		p := s.resolve(operand)

		var failure string
		switch {
		case p == paths.Root:
			failure = "Device or resource busy"
		case s.fs.FileExists(p):
			failure = "Not a directory"
		case !s.fs.IsDirectory(p):
			failure = "No such file or directory"
		case len(s.fs.ListDirectory(p)) > 0:
			failure = "Directory not empty"
		default:
			s.fs.RemoveDirectoryTree(p)
		}

		if failure != "" {
			lines = append(lines, fmt.Sprintf("rmdir: failed to remove '%s': %s", operand, failure))
			code = ExitFailure
		}
	}
	s.fixCwd()
	return s.output(code, lines...)
}

func cmdTree(s *Session, args []string) Output {
	if len(args) > 1 {
		return s.output(ExitUsage, "tree: too many arguments")
	}
	operand := "."
	if len(args) == 1 {
		operand = args[0]
	}
	root := s.resolve(operand)
	if !s.fs.IsDirectory(root) {
		return s.output(ExitFailure, operand+" [error opening dir]")
	}

	type entry struct {
		name  string
		depth int
		isDir bool
	}
	var entries []entry
	s.fs.Walk(root, func(info vfs.NodeInfo, depth int) bool {
		if depth > 0 {
			entries = append(entries, entry{name: info.Name, depth: depth, isDir: info.IsDir})
		}
		return true
	})

	// A node is the last of its siblings when no later node shares its
	// depth before the walk climbs above it
	last := make([]bool, len(entries))
	later := map[int]bool{}
	for i := len(entries) - 1; i >= 0; i-- {
		d := entries[i].depth
		last[i] = !later[d]
		later[d] = true
		for k := range later {
			if k > d {
				delete(later, k)
			}
		}
	}

	lines := []string{operand}
	dirs, files := 0, 0
	ancestorsLast := map[int]bool{}
	for i, e := range entries {
		var b strings.Builder
		for k := 1; k < e.depth; k++ {
			if ancestorsLast[k] {
				b.WriteString("    ")
			} else {
				b.WriteString("│   ")
			}
		}
		if last[i] {
			b.WriteString("└── ")
		} else {
			b.WriteString("├── ")
		}
		b.WriteString(e.name)
		ancestorsLast[e.depth] = last[i]

		lines = append(lines, b.String())
		if e.isDir {
			dirs++
		} else {
			files++
		}
	}

	lines = append(lines, "", fmt.Sprintf("%d %s, %d %s",
		dirs, plural(dirs, "directory", "directories"), files, plural(files, "file", "files")))
	return s.output(ExitOK, lines...)
}

func cmdFind(s *Session, args []string) Output {
	operand := "."
	var pattern, kind string

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-name", "-type":
			if i+1 >= len(args) {
				return s.output(ExitUsage, "find: missing argument to `"+arg+"'")
			}
			i++
			if arg == "-name" {
				pattern = args[i]
			} else {
				kind = args[i]
			}
		default:
			if strings.HasPrefix(arg, "-") || i > 0 {
				return s.output(ExitUsage, "find: unknown predicate `"+arg+"'")
			}
			operand = arg
		}
	}

	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return s.output(ExitUsage, "find: invalid pattern `"+pattern+"'")
	}
	if kind != "" && kind != "f" && kind != "d" {
		return s.output(ExitUsage, "find: Unknown argument to -type: "+kind)
	}

	root := s.resolve(operand)
	if _, ok := s.fs.Stat(root); !ok {
		return s.output(ExitFailure, fmt.Sprintf("find: '%s': No such file or directory", operand))
	}

	var lines []string
	s.fs.Walk(root, func(info vfs.NodeInfo, _ int) bool {
		if (kind == "f" && info.IsDir) || (kind == "d" && !info.IsDir) {
			return true
		}
		if pattern != "" {
			if ok, _ := doublestar.Match(pattern, info.Name); !ok {
				return true
			}
		}
		lines = append(lines, displayUnder(operand, root, info.Path))
		return true
	})
	return s.output(ExitOK, lines...)
}

func cmdFile(s *Session, args []string) Output {
	if len(args) == 0 {
		return s.output(ExitUsage, "file: missing operand")
	}

	var lines []string
	code := ExitOK
	for _, operand := range args {
		p := s.resolve(operand)
		content, ok := s.fs.ReadFile(p)
		switch {
		case ok && content == "":
			lines = append(lines, operand+": empty")
		case ok:
			lines = append(lines, operand+": "+mimetype.Detect([]byte(content)).String())
		case s.fs.IsDirectory(p):
			lines = append(lines, operand+": directory")
		default:
			lines = append(lines, operand+": cannot open (No such file or directory)")
			code = ExitFailure
		}
	}
	return s.output(code, lines...)
}

func cmdWhoami(s *Session, _ []string) Output {
	return s.output(ExitOK, paths.User)
}

func cmdDate(s *Session, _ []string) Output {
	return s.output(ExitOK, s.now().Format(time.UnixDate))
}

func cmdHistory(s *Session, _ []string) Output {
	lines := make([]string, len(s.history))
	for i, line := range s.history {
		lines[i] = fmt.Sprintf("%5d  %s", i+1, line)
	}
	return s.output(ExitOK, lines...)
}

func cmdClear(s *Session, _ []string) Output {
	out := s.output(ExitOK)
	out.Clear = true
	return out
}

func cmdHelp(s *Session, _ []string) Output {
	return s.output(ExitOK, usage...)
}

// fixCwd moves the session up to the nearest directory that still exists
func (s *Session) fixCwd() {
	for !s.fs.IsDirectory(s.cwd) && s.cwd != paths.Root {
		s.cwd = vfs.GetParentPath(s.cwd)
	}
}

// displayUnder renders p the way it was reached from operand
func displayUnder(operand, root, p string) string {
	if p == root {
		return operand
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
	return strings.TrimSuffix(operand, "/") + "/" + rel
}

// longEntry renders one "ls -l" line; directory sizes are entry counts
func longEntry(info vfs.NodeInfo, name string) string {
	mode := "-rw-r--r--"
	if info.IsDir {
		mode = "drwxr-xr-x"
		name += "/"
	}
	return fmt.Sprintf("%s %s %6d %s", mode, paths.User, info.Size, name)
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
