package terminal

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gmlportal/desktop/backend/internal/domain/vfs"
	"github.com/gmlportal/desktop/backend/internal/shared/paths"
)

// Session is one simulated shell: a working directory and a bounded
// command history over the shared virtual filesystem.
type Session struct {
	ID        string
	WindowID  string
	CreatedAt time.Time

	fs  *vfs.FS
	now func() time.Time

	mu         sync.Mutex
	cwd        string   // Protected by mu
	history    []string // Protected by mu
	limit      int      // Protected by mu
	easterEggs bool     // Protected by mu
}

func newSession(sessionID, windowID string, fs *vfs.FS, limit int, now func() time.Time) *Session {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Session{
		ID:        sessionID,
		WindowID:  windowID,
		CreatedAt: now(),
		fs:        fs,
		now:       now,
		cwd:       paths.Home,
		history:   []string{},
		limit:     limit,
	}
}

// Info returns a description of the session
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionInfo{
		ID:           s.ID,
		WindowID:     s.WindowID,
		Cwd:          s.cwd,
		Prompt:       s.prompt(),
		HistoryLen:   len(s.history),
		HistoryLimit: s.limit,
		CreatedAt:    s.CreatedAt,
	}
}

// Cwd returns the working directory
func (s *Session) Cwd() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd
}

// History returns the recorded command lines, oldest first
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// SetHistoryLimit changes the history bound, dropping the oldest entries
// when the history is over it
func (s *Session) SetHistoryLimit(limit int) {
	if limit <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.limit = limit
	s.trimHistory()
}

// SetEasterEggs toggles the joke commands
func (s *Session) SetEasterEggs(enabled bool) {
	s.mu.Lock()
	s.easterEggs = enabled
	s.mu.Unlock()
}

// Exec runs one command line. Failures are reported as shell-style output
// with a non-zero exit code, never as an error.
func (s *Session) Exec(line string) Output {
	s.mu.Lock()
	defer s.mu.Unlock()

	line = strings.TrimSpace(line)
	if line == "" {
		return s.output(ExitOK)
	}
	s.history = append(s.history, line)
	s.trimHistory()

	tokens, err := tokenize(line)
	if err != nil {
		return s.output(ExitUsage, fmt.Sprintf("sh: %v", err))
	}

	name := tokens[0].text
	if run, ok := redirectable[name]; ok {
		args, out, err := splitRedirect(tokens[1:])
		if err != nil {
			return s.output(ExitUsage, fmt.Sprintf("sh: %v", err))
		}
		return run(s, args, out)
	}

	args := words(tokens[1:])
	cmd, ok := commands[name]
	if !ok && s.easterEggs {
		cmd, ok = easterEggs[name]
	}
	if !ok {
		return s.output(ExitNotFound, name+": command not found")
	}
	return cmd(s, args)
}

// Command returns the command name of a line, for metrics
func Command(line string) string {
	tokens, err := tokenize(strings.TrimSpace(line))
	if err != nil || len(tokens) == 0 {
		return ""
	}
	name := tokens[0].text
	if _, ok := commands[name]; ok {
		return name
	}
	if _, ok := redirectable[name]; ok {
		return name
	}
	if _, ok := easterEggs[name]; ok {
		return name
	}
	return "unknown"
}

func (s *Session) trimHistory() {
	if over := len(s.history) - s.limit; over > 0 {
		s.history = append([]string(nil), s.history[over:]...)
	}
}

func (s *Session) resolve(p string) string {
	return vfs.ResolvePath(p, s.cwd)
}

func (s *Session) prompt() string {
	return fmt.Sprintf("%s@portal:%s$", paths.User, paths.Display(s.cwd))
}

func (s *Session) output(code int, lines ...string) Output {
	if lines == nil {
		lines = []string{}
	}
	return Output{
		Lines:    lines,
		ExitCode: code,
		Cwd:      s.cwd,
		Prompt:   s.prompt(),
	}
}
