package preferences

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/gmlportal/desktop/backend/internal/infrastructure/storage"
	"github.com/gmlportal/desktop/backend/internal/shared/types"
)

// Store keys
const (
	KeyPinned   = "desktop.pinnedApps"
	KeyRecent   = "desktop.recentApps"
	KeyTrashed  = "desktop.trashedApps"
	KeyRemoved  = "desktop.removedApps"
	KeyOrder    = "desktop.appOrder"
	KeySettings = "desktop.settings"
)

// MaxPinned and MaxRecent bound the pinned and recent lists
const (
	MaxPinned = 8
	MaxRecent = 8
)

// ErrCorrupt marks a persisted value that could not be decoded
var ErrCorrupt = errors.New("corrupt preference value")

// SettingsListener is called with the previous and new settings after
// every change
type SettingsListener func(old, updated Settings)

// Snapshot is every preference list at one point in time
type Snapshot struct {
	Pinned  []string `json:"pinned"`
	Recent  []string `json:"recent"`
	Trashed []string `json:"trashed"`
	Removed []string `json:"removed"`
	Order   []string `json:"order"`
}

// Preferences holds launch history, pins, the trash and desktop settings,
// writing every change through to a key/value store.
type Preferences struct {
	mu       sync.RWMutex
	store    storage.Store
	pinned   []string // Protected by mu
	recent   []string // Protected by mu
	trashed  []string // Protected by mu
	removed  []string // Protected by mu
	order    []string // Protected by mu
	settings Settings // Protected by mu

	logger    *zap.Logger
	listeners []SettingsListener
}

// New creates preferences with empty lists and default settings
func New(store storage.Store) *Preferences {
	return &Preferences{
		store:    store,
		pinned:   []string{},
		recent:   []string{},
		trashed:  []string{},
		removed:  []string{},
		order:    []string{},
		settings: DefaultSettings(),
		logger:   zap.NewNop(),
	}
}

// WithLogger sets the logger
func (p *Preferences) WithLogger(logger *zap.Logger) *Preferences {
	if logger != nil {
		p.logger = logger.Named("preferences")
	}
	return p
}

// OnSettingsChange registers a listener. Listeners run synchronously after
// the change is stored, without the lock held.
func (p *Preferences) OnSettingsChange(l SettingsListener) {
	p.mu.Lock()
	p.listeners = append(p.listeners, l)
	p.mu.Unlock()
}

// Load reads every key from the store. Ids unknown to valid are dropped
// (all ids are kept when valid is nil). Missing keys are empty; corrupt
// values are logged, treated as empty, and reported in the joined error.
func (p *Preferences) Load(ctx context.Context, valid func(id string) bool) error {
	keep := func(string) bool { return true }
	if valid != nil {
		keep = valid
	}

	var errs []error
	read := func(key string, limit int) []string {
		list, err := p.ReadList(ctx, key)
		if err != nil {
			p.logger.Warn("preference list unreadable, using empty list", zap.String("key", key), zap.Error(err))
			errs = append(errs, err)
			return []string{}
		}
		list = Filter(Dedupe(list), keep)
		if limit > 0 && len(list) > limit {
			list = list[:limit]
		}
		return list
	}

	pinned := read(KeyPinned, MaxPinned)
	recent := read(KeyRecent, MaxRecent)
	trashed := read(KeyTrashed, 0)
	removed := read(KeyRemoved, 0)
	order := read(KeyOrder, 0)

	settings, err := p.readSettings(ctx)
	if err != nil {
		p.logger.Warn("settings unreadable, using defaults", zap.Error(err))
		errs = append(errs, err)
	}

	p.mu.Lock()
	p.pinned, p.recent, p.trashed, p.removed, p.order = pinned, recent, trashed, removed, order
	p.settings = settings
	p.mu.Unlock()

	return errors.Join(errs...)
}

// ReadList reads one list from the store. A missing key is an empty list.
func (p *Preferences) ReadList(ctx context.Context, key string) ([]string, error) {
	raw, err := p.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return []string{}, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var list []string
	if err := sonic.Unmarshal(raw, &list); err != nil {
		return []string{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func (p *Preferences) readSettings(ctx context.Context) (Settings, error) {
	raw, err := p.store.Get(ctx, KeySettings)
	if errors.Is(err, storage.ErrNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return DefaultSettings(), fmt.Errorf("failed to read %s: %w", KeySettings, err)
	}

	s, err := DecodeSettings(raw)
	if err != nil {
		return s, fmt.Errorf("%w: %s: %v", ErrCorrupt, KeySettings, err)
	}
	return s, nil
}

// Pinned returns the pinned app ids, most recent first
func (p *Preferences) Pinned() []string { return p.list(&p.pinned) }

// Recent returns the recently launched app ids, most recent first
func (p *Preferences) Recent() []string { return p.list(&p.recent) }

// Trashed returns the trashed app ids
func (p *Preferences) Trashed() []string { return p.list(&p.trashed) }

// Removed returns the app ids removed from the trash
func (p *Preferences) Removed() []string { return p.list(&p.removed) }

// Order returns the desktop icon order
func (p *Preferences) Order() []string { return p.list(&p.order) }

// Snapshot returns every list
func (p *Preferences) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Snapshot{
		Pinned:  slices.Clone(p.pinned),
		Recent:  slices.Clone(p.recent),
		Trashed: slices.Clone(p.trashed),
		Removed: slices.Clone(p.removed),
		Order:   slices.Clone(p.order),
	}
}

func (p *Preferences) list(l *[]string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(*l)
}

// RecordLaunch pushes appID to the front of the recent list. Store
// failures are logged; the in-memory list is updated regardless.
func (p *Preferences) RecordLaunch(appID string) {
	p.mu.Lock()
	p.recent = PushFront(p.recent, appID, MaxRecent)
	err := p.writeList(context.Background(), KeyRecent, p.recent)
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("failed to persist recent apps", zap.String("app_id", appID), zap.Error(err))
	}
}

// TogglePinned pins or unpins appID and reports whether it is now pinned
func (p *Preferences) TogglePinned(ctx context.Context, appID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var pinned bool
	p.pinned, pinned = Toggle(p.pinned, appID, MaxPinned)
	return pinned, p.writeList(ctx, KeyPinned, p.pinned)
}

// MoveToTrash hides appID from the desktop and unpins it
func (p *Preferences) MoveToTrash(ctx context.Context, appID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.trashed = PushFront(p.trashed, appID, 0)
	p.removed = Remove(p.removed, appID)
	p.pinned = Remove(p.pinned, appID)
	return p.writeLists(ctx, KeyTrashed, KeyRemoved, KeyPinned)
}

// RestoreFromTrash puts a trashed app back on the desktop
func (p *Preferences) RestoreFromTrash(ctx context.Context, appID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !slices.Contains(p.trashed, appID) {
		return nil
	}
	p.trashed = Remove(p.trashed, appID)
	return p.writeLists(ctx, KeyTrashed)
}

// RemoveFromTrash moves a trashed app to the removed list
func (p *Preferences) RemoveFromTrash(ctx context.Context, appID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !slices.Contains(p.trashed, appID) {
		return nil
	}
	p.trashed = Remove(p.trashed, appID)
	p.removed = PushFront(p.removed, appID, 0)
	return p.writeLists(ctx, KeyTrashed, KeyRemoved)
}

// RestoreRemoved puts a removed app back on the desktop
func (p *Preferences) RestoreRemoved(ctx context.Context, appID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !slices.Contains(p.removed, appID) {
		return nil
	}
	p.removed = Remove(p.removed, appID)
	return p.writeLists(ctx, KeyRemoved)
}

// SetOrder stores the desktop icon order
func (p *Preferences) SetOrder(ctx context.Context, order []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.order = Dedupe(order)
	return p.writeLists(ctx, KeyOrder)
}

// IsExcluded reports whether appID is trashed or removed
func (p *Preferences) IsExcluded(appID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return slices.Contains(p.trashed, appID) || slices.Contains(p.removed, appID)
}

// DesktopApps returns the apps shown on the desktop: excluded apps are
// dropped, ordered apps come first in the stored order, the rest follow
// in catalog order.
func (p *Preferences) DesktopApps(apps []types.AppDescriptor) []types.AppDescriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()

	byID := make(map[string]types.AppDescriptor, len(apps))
	for _, app := range apps {
		byID[app.ID] = app
	}
	excluded := func(id string) bool {
		return slices.Contains(p.trashed, id) || slices.Contains(p.removed, id)
	}

	out := make([]types.AppDescriptor, 0, len(apps))
	placed := make(map[string]bool, len(apps))
	for _, id := range p.order {
		app, ok := byID[id]
		if !ok || excluded(id) {
			continue
		}
		out = append(out, app)
		placed[id] = true
	}
	for _, app := range apps {
		if placed[app.ID] || excluded(app.ID) {
			continue
		}
		out = append(out, app)
	}
	return out
}

// Resolve maps ids to descriptors, skipping ids missing from apps
func Resolve(ids []string, apps []types.AppDescriptor) []types.AppDescriptor {
	byID := make(map[string]types.AppDescriptor, len(apps))
	for _, app := range apps {
		byID[app.ID] = app
	}

	out := make([]types.AppDescriptor, 0, len(ids))
	for _, id := range ids {
		if app, ok := byID[id]; ok {
			out = append(out, app)
		}
	}
	return out
}

// Settings returns the current settings
func (p *Preferences) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// UpdateSettings validates and applies a patch. An invalid patch changes
// nothing.
func (p *Preferences) UpdateSettings(ctx context.Context, patch SettingsPatch) (Settings, error) {
	if err := patch.Validate(); err != nil {
		return p.Settings(), err
	}

	p.mu.Lock()
	old := p.settings
	p.settings = patch.Apply(old)
	updated := p.settings
	err := p.writeSettings(ctx)
	listeners := slices.Clone(p.listeners)
	p.mu.Unlock()

	p.notify(listeners, old, updated)
	return updated, err
}

// ResetSettings restores the factory settings
func (p *Preferences) ResetSettings(ctx context.Context) (Settings, error) {
	p.mu.Lock()
	old := p.settings
	p.settings = DefaultSettings()
	updated := p.settings
	err := p.writeSettings(ctx)
	listeners := slices.Clone(p.listeners)
	p.mu.Unlock()

	p.notify(listeners, old, updated)
	return updated, err
}

func (p *Preferences) notify(listeners []SettingsListener, old, updated Settings) {
	for _, l := range listeners {
		l(old, updated)
	}
}

// writeLists must be called with mu held
func (p *Preferences) writeLists(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		var list []string
		switch key {
		case KeyPinned:
			list = p.pinned
		case KeyRecent:
			list = p.recent
		case KeyTrashed:
			list = p.trashed
		case KeyRemoved:
			list = p.removed
		case KeyOrder:
			list = p.order
		}
		if err := p.writeList(ctx, key, list); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Preferences) writeList(ctx context.Context, key string, list []string) error {
	if list == nil {
		list = []string{}
	}
	raw, err := sonic.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := p.store.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// writeSettings must be called with mu held
func (p *Preferences) writeSettings(ctx context.Context) error {
	raw, err := sonic.Marshal(p.settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := p.store.Put(ctx, KeySettings, raw); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
