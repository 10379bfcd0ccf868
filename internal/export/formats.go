package export

import (
	"bytes"
	"fmt"

	"github.com/notebook-tools/env-composer/internal/envspec"
)

func init() {
	Register(requirementsExporter{})
	Register(condaSpecsExporter{})
}

// requirementsExporter renders the pip delegation block as a requirements
// file, with editable installs as "-e <path>" lines.
type requirementsExporter struct{}

func (requirementsExporter) Name() string     { return "requirements" }
func (requirementsExporter) FileName() string { return "requirements.txt" }

func (requirementsExporter) Render(spec *envspec.EnvironmentSpec) ([]byte, error) {
	block, ok := spec.PipBlock()
	if !ok {
		return nil, fmt.Errorf("manifest %q has no pip block to export", spec.Name)
	}

	var buf bytes.Buffer
	for _, r := range block.Requirements {
		if r.Kind == envspec.PipEditable {
			fmt.Fprintf(&buf, "-e %s\n", r.Path)
			continue
		}
		fmt.Fprintln(&buf, r.Spec.String())
	}
	return buf.Bytes(), nil
}

// condaSpecsExporter renders the conda dependencies as a match spec list
// usable with `conda create --file`.
type condaSpecsExporter struct{}

func (condaSpecsExporter) Name() string     { return "conda" }
func (condaSpecsExporter) FileName() string { return "conda-specs.txt" }

func (condaSpecsExporter) Render(spec *envspec.EnvironmentSpec) ([]byte, error) {
	deps := spec.CondaDependencies()
	if len(deps) == 0 {
		return nil, fmt.Errorf("manifest %q has no conda dependencies to export", spec.Name)
	}

	var buf bytes.Buffer
	for _, ch := range spec.Channels {
		fmt.Fprintf(&buf, "# channel: %s\n", ch)
	}
	for _, dep := range deps {
		fmt.Fprintln(&buf, dep.String())
	}
	return buf.Bytes(), nil
}
