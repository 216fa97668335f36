package terminal

import "time"

// Exit codes reported by commands
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 127
)

// DefaultHistoryLimit applies when no limit is configured
const DefaultHistoryLimit = 100

// Output is the result of one command line
type Output struct {
	Lines    []string `json:"lines"`
	ExitCode int      `json:"exit_code"`
	Cwd      string   `json:"cwd"`
	Prompt   string   `json:"prompt"`
	Clear    bool     `json:"clear,omitempty"`
}

// SessionInfo describes a session
type SessionInfo struct {
	ID           string    `json:"id"`
	WindowID     string    `json:"window_id,omitempty"`
	Cwd          string    `json:"cwd"`
	Prompt       string    `json:"prompt"`
	HistoryLen   int       `json:"history_len"`
	HistoryLimit int       `json:"history_limit"`
	CreatedAt    time.Time `json:"created_at"`
}
