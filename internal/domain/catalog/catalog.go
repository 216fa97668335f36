package catalog

import (
	"errors"
	"fmt"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/gmlportal/desktop/backend/internal/infrastructure/monitoring"
	"github.com/gmlportal/desktop/backend/internal/shared/types"
)

// ErrInvalidDescriptor is returned when a descriptor fails validation
var ErrInvalidDescriptor = errors.New("invalid app descriptor")

// Catalog is the ordered set of launchable apps. Only statuses change at
// runtime; the app list itself is replaced wholesale by Replace.
type Catalog struct {
	mu    sync.RWMutex
	apps  []types.AppDescriptor // Protected by mu
	index map[string]int        // Protected by mu

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// New creates a catalog holding apps, which must pass Validate
func New(apps []types.AppDescriptor) (*Catalog, error) {
	c := &Catalog{
		index:  make(map[string]int),
		logger: zap.NewNop(),
	}
	if err := c.Replace(apps); err != nil {
		return nil, err
	}
	return c, nil
}

// NewDefault creates a catalog holding the built-in apps
func NewDefault() *Catalog {
	c, err := New(Defaults())
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// WithLogger sets the logger
func (c *Catalog) WithLogger(logger *zap.Logger) *Catalog {
	if logger != nil {
		c.logger = logger.Named("catalog")
	}
	return c
}

// WithMetrics adds metrics tracking to the catalog
func (c *Catalog) WithMetrics(metrics *monitoring.Metrics) *Catalog {
	c.metrics = metrics
	c.mu.RLock()
	c.report()
	c.mu.RUnlock()
	return c
}

// Replace validates apps and swaps them in as the whole catalog
func (c *Catalog) Replace(apps []types.AppDescriptor) error {
	if err := Validate(apps); err != nil {
		return err
	}

	next := make([]types.AppDescriptor, len(apps))
	index := make(map[string]int, len(apps))
	for i, app := range apps {
		next[i] = app.Clone()
		index[app.ID] = i
	}

	c.mu.Lock()
	c.apps = next
	c.index = index
	c.report()
	c.mu.Unlock()
	return nil
}

// Get retrieves an app by ID
func (c *Catalog) Get(id string) (types.AppDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return types.AppDescriptor{}, false
	}
	return c.apps[i].Clone(), true
}

// List returns all apps in catalog order
func (c *Catalog) List() []types.AppDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]types.AppDescriptor, len(c.apps))
	for i, app := range c.apps {
		out[i] = app.Clone()
	}
	return out
}

// IDs returns the app ids in catalog order
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, len(c.apps))
	for i, app := range c.apps {
		ids[i] = app.ID
	}
	return ids
}

// Has reports whether id is in the catalog
func (c *Catalog) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.index[id]
	return ok
}

// SetStatus records a reachability result. updatedAt is left unchanged
// when empty.
func (c *Catalog) SetStatus(id string, status types.AppStatus, updatedAt string) bool {
	if !status.Valid() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.apps[i].Status = status
	if updatedAt != "" {
		c.apps[i].UpdatedAt = updatedAt
	}
	c.report()
	return true
}

// Summary counts apps by reachability
func (c *Catalog) Summary() types.ServiceSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.summary()
}

func (c *Catalog) summary() types.ServiceSummary {
	s := types.ServiceSummary{Total: len(c.apps)}
	for _, app := range c.apps {
		switch app.Status {
		case types.StatusOnline:
			s.Online++
		case types.StatusOffline:
			s.Offline++
		}
	}
	return s
}

// report must be called with mu held
func (c *Catalog) report() {
	if c.metrics == nil {
		return
	}
	s := c.summary()
	c.metrics.SetCatalogApps(s.Total)
	c.metrics.SetAppsOnline(s.Online)
}

// Validate checks every descriptor and that ids are unique
func Validate(apps []types.AppDescriptor) error {
	seen := make(map[string]bool, len(apps))
	for i, app := range apps {
		err := validation.ValidateStruct(&app,
			validation.Field(&app.ID, validation.Required),
			validation.Field(&app.Name, validation.Required),
			validation.Field(&app.Status, validation.Required, validation.In(
				types.StatusOnline, types.StatusOffline, types.StatusLocal,
			)),
		)
		if err != nil {
			return fmt.Errorf("%w: app %d (%q): %v", ErrInvalidDescriptor, i, app.ID, err)
		}
		if seen[app.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidDescriptor, app.ID)
		}
		seen[app.ID] = true
	}
	return nil
}
