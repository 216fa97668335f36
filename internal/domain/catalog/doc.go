// Package catalog holds the launchable app descriptors.
//
// The built-in catalog can be replaced from a JSON, YAML or TOML file with a
// top-level "apps" list. Display text is stripped of markup on load and
// every descriptor is validated before the swap, so a bad file never
// leaves a partial catalog behind. Watch keeps the catalog in sync with
// the file while the server runs.
package catalog
