package terminal

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gmlportal/desktop/backend/internal/domain/vfs"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/monitoring"
)

// Manager owns the terminal sessions, all sharing one filesystem
type Manager struct {
	fs *vfs.FS

	mu         sync.RWMutex
	sessions   map[string]*Session // Protected by mu
	limit      int                 // Protected by mu
	easterEggs bool                // Protected by mu

	now     func() time.Time
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewManager creates a manager with no sessions
func NewManager(fs *vfs.FS) *Manager {
	return &Manager{
		fs:         fs,
		sessions:   make(map[string]*Session),
		limit:      DefaultHistoryLimit,
		easterEggs: true,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
}

// WithMetrics records sessions and commands
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithLogger sets the logger
func (m *Manager) WithLogger(logger *zap.Logger) *Manager {
	if logger != nil {
		m.logger = logger.Named("terminal")
	}
	return m
}

// WithClock overrides the clock used by "date"
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Create starts a session in the home directory. windowID links it to
// the terminal window hosting it and may be empty.
func (m *Manager) Create(windowID string) SessionInfo {
	m.mu.Lock()
	s := newSession(uuid.NewString(), windowID, m.fs, m.limit, m.now)
	s.easterEggs = m.easterEggs
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.reportSessions(count)
	m.logger.Debug("terminal session created", zap.String("session_id", s.ID), zap.String("window_id", windowID))
	return s.Info()
}

// Get returns a session
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	return s, ok
}

// List returns every session, oldest first
func (m *Manager) List() []SessionInfo {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	infos := make([]SessionInfo, len(sessions))
	for i, s := range sessions {
		infos[i] = s.Info()
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Exec runs a command line in a session. It returns false when the session
// does not exist.
func (m *Manager) Exec(sessionID, line string) (Output, bool) {
	s, ok := m.Get(sessionID)
	if !ok {
		return Output{}, false
	}

	out := s.Exec(line)
	if m.metrics != nil {
		if name := Command(line); name != "" {
			m.metrics.RecordTerminalCommand(name, out.ExitCode)
		}
	}
	return out, true
}

// Close ends a session
func (m *Manager) Close(sessionID string) bool {
	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	count := len(m.sessions)
	m.mu.Unlock()

	if ok {
		m.reportSessions(count)
	}
	return ok
}

// CloseWindow ends every session hosted by windowID and returns how many
// were closed
func (m *Manager) CloseWindow(windowID string) int {
	if windowID == "" {
		return 0
	}

	m.mu.Lock()
	closed := 0
	for sessionID, s := range m.sessions {
		if s.WindowID == windowID {
			delete(m.sessions, sessionID)
			closed++
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if closed > 0 {
		m.reportSessions(count)
	}
	return closed
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Configure applies the terminal settings to new and existing sessions
func (m *Manager) Configure(historyLimit int, easterEggs bool) {
	m.mu.Lock()
	if historyLimit > 0 {
		m.limit = historyLimit
	}
	m.easterEggs = easterEggs
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.SetHistoryLimit(historyLimit)
		s.SetEasterEggs(easterEggs)
	}
}

func (m *Manager) reportSessions(count int) {
	if m.metrics != nil {
		m.metrics.SetTerminalSessions(count)
	}
}
