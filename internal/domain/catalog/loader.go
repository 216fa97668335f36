package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pelletier/go-toml/v2"

	"github.com/gmlportal/desktop/backend/internal/shared/types"
)

// catalogFile is the on-disk layout shared by every format
type catalogFile struct {
	Apps []types.AppDescriptor `json:"apps" yaml:"apps" toml:"apps"`
}

var sanitizer = bluemonday.StrictPolicy()

// Decode parses catalog data. format is a file extension such as ".json",
// ".yaml", ".yml" or ".toml".
func Decode(data []byte, format string) ([]types.AppDescriptor, error) {
	var file catalogFile

	switch strings.ToLower(format) {
	case ".json":
		if err := sonic.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse json catalog: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse yaml catalog: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse toml catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}

	apps := make([]types.AppDescriptor, len(file.Apps))
	for i, app := range file.Apps {
		apps[i] = sanitize(app)
	}
	if err := Validate(apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// ReadFile reads and decodes a catalog file, choosing the format by extension
func ReadFile(path string) ([]types.AppDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Decode(data, filepath.Ext(path))
}

// LoadFile replaces the catalog with the contents of path. The current
// catalog is kept when the file cannot be used.
func (c *Catalog) LoadFile(path string) error {
	apps, err := ReadFile(path)
	if err != nil {
		return err
	}
	if err := c.Replace(apps); err != nil {
		return err
	}

	c.logger.Sugar().Infof("Loaded %d apps from %s", len(apps), path)
	return nil
}

// sanitize strips markup from display text; catalog files are operator
// supplied but rendered by the browser
func sanitize(app types.AppDescriptor) types.AppDescriptor {
	app.ID = strings.TrimSpace(app.ID)
	app.Name = strings.TrimSpace(sanitizer.Sanitize(app.Name))
	app.Description = strings.TrimSpace(sanitizer.Sanitize(app.Description))
	if app.Status == "" {
		app.Status = types.StatusOnline
		if !app.HasURL() {
			app.Status = types.StatusLocal
		}
	}
	return app
}
