// Package export renders environment manifests into the formats consumed by
// secondary tooling: pip requirement files and conda spec lists, optionally
// packed into a compressed bundle.
package export

import (
	"fmt"
	"sort"

	"github.com/notebook-tools/env-composer/internal/envspec"
)

// Exporter renders one output format from a manifest.
type Exporter interface {
	// Name is the format ID, e.g. "requirements".
	Name() string

	// FileName is the conventional output file name for the format.
	FileName() string

	// Render produces the format's content.
	Render(spec *envspec.EnvironmentSpec) ([]byte, error)
}

var exporters = make(map[string]Exporter)

// Register makes an Exporter available under its Name().
func Register(e Exporter) {
	exporters[e.Name()] = e
}

// Get returns the Exporter by format name.
func Get(name string) (Exporter, bool) {
	e, ok := exporters[name]
	return e, ok
}

// Names lists the registered format names, sorted.
func Names() []string {
	names := make([]string, 0, len(exporters))
	for name := range exporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render looks up the format and renders the manifest with it.
func Render(format string, spec *envspec.EnvironmentSpec) ([]byte, error) {
	e, ok := Get(format)
	if !ok {
		return nil, fmt.Errorf("unknown export format %q (available: %v)", format, Names())
	}
	return e.Render(spec)
}
