// Package envspec models Binder-style conda environment manifests: a named
// environment, an ordered channel list, and an ordered dependency list that
// mixes conda match specs with a single nested pip delegation block.
package envspec

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/notebook-tools/env-composer/internal/envspec/matchspec"
)

// EnvironmentSpec is one parsed environment manifest.
type EnvironmentSpec struct {
	Name         string
	Channels     []string
	Dependencies []Dependency

	// Variables holds optional environment variables the manifest exports.
	Variables map[string]string

	// Prefix is accepted on input for compatibility with `conda env export`
	// output but dropped from the canonical serialization.
	Prefix string

	// sourceDir is the directory the manifest was loaded from, used to
	// resolve editable install paths. Empty when parsed from memory.
	sourceDir string
}

// Dependency is a single entry of the dependencies list: either a conda
// match spec or the pip delegation block, never both.
type Dependency struct {
	Conda *matchspec.MatchSpec
	Pip   *PipBlock
}

// IsPipBlock reports whether this entry is the nested pip delegation block.
func (d Dependency) IsPipBlock() bool {
	return d.Pip != nil
}

// PipBlock is the nested dependency list handed to pip.
type PipBlock struct {
	Requirements []PipRequirement
}

// PipRequirementKind distinguishes the entry forms a pip block may carry.
type PipRequirementKind int

const (
	// PipPackage is a plain requirement, optionally version-constrained.
	PipPackage PipRequirementKind = iota
	// PipEditable requests an editable/development install of a local path.
	PipEditable
)

// PipRequirement is one entry of the pip block.
type PipRequirement struct {
	Kind PipRequirementKind

	// Spec is set for PipPackage entries.
	Spec matchspec.MatchSpec

	// Path is set for PipEditable entries, relative to the manifest.
	Path string
}

// String renders the requirement the way it appears in a manifest.
func (r PipRequirement) String() string {
	if r.Kind == PipEditable {
		return "--editable " + r.Path
	}
	return r.Spec.String()
}

// PipBlock returns the delegation block, if any. When the manifest violates
// the single-block invariant the first block wins; CheckInvariants reports
// the violation.
func (s *EnvironmentSpec) PipBlock() (*PipBlock, bool) {
	for _, d := range s.Dependencies {
		if d.IsPipBlock() {
			return d.Pip, true
		}
	}
	return nil, false
}

// CondaDependencies returns the conda entries in manifest order.
func (s *EnvironmentSpec) CondaDependencies() []matchspec.MatchSpec {
	var specs []matchspec.MatchSpec
	for _, d := range s.Dependencies {
		if d.Conda != nil {
			specs = append(specs, *d.Conda)
		}
	}
	return specs
}

// EditableRequirements returns every editable entry across the pip block.
func (b *PipBlock) EditableRequirements() []PipRequirement {
	var reqs []PipRequirement
	for _, r := range b.Requirements {
		if r.Kind == PipEditable {
			reqs = append(reqs, r)
		}
	}
	return reqs
}

// SourceDir returns the directory the manifest was loaded from, or "".
func (s *EnvironmentSpec) SourceDir() string {
	return s.sourceDir
}

// CheckInvariants verifies the structural rules a manifest must satisfy
// beyond the grammar: a non-empty name and channel list, exactly one pip
// delegation block among the dependencies, and exactly one editable install
// inside it. When the manifest was loaded from disk the editable path must
// also resolve to an existing directory relative to the manifest.
func (s *EnvironmentSpec) CheckInvariants() error {
	if s.Name == "" {
		return fmt.Errorf("manifest has no name")
	}
	if len(s.Channels) == 0 {
		return fmt.Errorf("manifest %q declares no channels", s.Name)
	}
	if len(s.Dependencies) == 0 {
		return fmt.Errorf("manifest %q declares no dependencies", s.Name)
	}

	pipBlocks := 0
	for _, d := range s.Dependencies {
		if d.IsPipBlock() {
			pipBlocks++
		}
	}
	if pipBlocks != 1 {
		return fmt.Errorf("manifest %q must contain exactly one pip block, found %d", s.Name, pipBlocks)
	}

	block, _ := s.PipBlock()
	editables := block.EditableRequirements()
	if len(editables) != 1 {
		return fmt.Errorf("manifest %q must contain exactly one editable install, found %d", s.Name, len(editables))
	}

	if s.sourceDir != "" {
		path := filepath.Join(s.sourceDir, editables[0].Path)
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("editable install path %q not resolvable: %w", editables[0].Path, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("editable install path %q is not a directory", editables[0].Path)
		}
	}

	return nil
}
