// Package speccompare performs a deep comparison of two environment
// manifests: name, channel order, conda dependency set, and the pip
// delegation block including the editable install target.
package speccompare

import (
	"sort"

	"github.com/notebook-tools/env-composer/internal/envspec"
)

// SpecCompareResult represents the result of comparing two manifests.
type SpecCompareResult struct {
	SchemaVersion string `json:"schemaVersion,omitempty"`

	From SpecSummary `json:"from"`
	To   SpecSummary `json:"to"`

	Equal bool `json:"equal"`

	Summary CompareSummary `json:"summary,omitempty"`
	Diff    SpecDiff       `json:"diff,omitempty"`
}

// SpecSummary is the per-manifest header of a compare result.
type SpecSummary struct {
	File     string   `json:"file,omitempty"`
	Name     string   `json:"name"`
	Channels []string `json:"channels"`
	Conda    int      `json:"condaDependencies"`
	Pip      int      `json:"pipRequirements"`
}

// CompareSummary provides a high-level summary of the differences.
type CompareSummary struct {
	Changed bool `json:"changed,omitempty"`

	NameChanged     bool `json:"nameChanged,omitempty"`
	ChannelsChanged bool `json:"channelsChanged,omitempty"`
	CondaChanged    bool `json:"condaChanged,omitempty"`
	PipChanged      bool `json:"pipChanged,omitempty"`
	EditableChanged bool `json:"editableChanged,omitempty"`

	AddedCount    int `json:"addedCount,omitempty"`
	RemovedCount  int `json:"removedCount,omitempty"`
	ModifiedCount int `json:"modifiedCount,omitempty"`
}

// SpecDiff represents the differences between two manifests.
type SpecDiff struct {
	Name     *ValueDiff[string]   `json:"name,omitempty"`
	Channels *ValueDiff[[]string] `json:"channels,omitempty"`
	Conda    DependencyDiff       `json:"conda,omitempty"`
	Pip      DependencyDiff       `json:"pip,omitempty"`
	Editable *ValueDiff[string]   `json:"editable,omitempty"`
}

type ValueDiff[T any] struct {
	From T `json:"from"`
	To   T `json:"to"`
}

// DependencyDiff represents added, removed, and constraint-modified entries.
type DependencyDiff struct {
	Added    []string             `json:"added,omitempty"`
	Removed  []string             `json:"removed,omitempty"`
	Modified []ModifiedDependency `json:"modified,omitempty"`
}

// ModifiedDependency is a package whose constraint changed.
type ModifiedDependency struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

// CompareSpecs compares two parsed manifests. fromFile and toFile label the
// result and may be empty.
func CompareSpecs(from, to *envspec.EnvironmentSpec, fromFile, toFile string) SpecCompareResult {

	if from == nil || to == nil {
		return SpecCompareResult{Equal: false}
	}
	res := SpecCompareResult{
		SchemaVersion: "1",
		From:          summarize(from, fromFile),
		To:            summarize(to, toFile),
		Equal:         true,
	}

	// --- name ---
	if from.Name != to.Name {
		res.Diff.Name = &ValueDiff[string]{From: from.Name, To: to.Name}
		res.Summary.NameChanged = true
		res.Summary.Changed = true
		res.Equal = false
	}

	// --- channels (order matters: priority order is semantic) ---
	if !equalStrings(from.Channels, to.Channels) {
		res.Diff.Channels = &ValueDiff[[]string]{From: from.Channels, To: to.Channels}
		res.Summary.ChannelsChanged = true
		res.Summary.Changed = true
		res.Equal = false
	}

	// --- conda dependencies ---
	res.Diff.Conda = compareEntrySets(condaEntries(from), condaEntries(to))
	if res.Diff.Conda.changed() {
		res.Summary.CondaChanged = true
		res.Summary.Changed = true
		res.Equal = false
	}

	// --- pip requirements ---
	res.Diff.Pip = compareEntrySets(pipEntries(from), pipEntries(to))
	if res.Diff.Pip.changed() {
		res.Summary.PipChanged = true
		res.Summary.Changed = true
		res.Equal = false
	}

	// --- editable install target ---
	fromEd, toEd := editablePath(from), editablePath(to)
	if fromEd != toEd {
		res.Diff.Editable = &ValueDiff[string]{From: fromEd, To: toEd}
		res.Summary.EditableChanged = true
		res.Summary.Changed = true
		res.Equal = false
	}

	for _, d := range []DependencyDiff{res.Diff.Conda, res.Diff.Pip} {
		res.Summary.AddedCount += len(d.Added)
		res.Summary.RemovedCount += len(d.Removed)
		res.Summary.ModifiedCount += len(d.Modified)
	}

	return res
}

func (d DependencyDiff) changed() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

func summarize(spec *envspec.EnvironmentSpec, file string) SpecSummary {
	summary := SpecSummary{
		File:     file,
		Name:     spec.Name,
		Channels: spec.Channels,
		Conda:    len(spec.CondaDependencies()),
	}
	if block, ok := spec.PipBlock(); ok {
		summary.Pip = len(block.Requirements)
	}
	return summary
}

// condaEntries maps package name to its full constraint string.
func condaEntries(spec *envspec.EnvironmentSpec) map[string]string {
	entries := make(map[string]string)
	for _, m := range spec.CondaDependencies() {
		entries[m.Name] = m.String()
	}
	return entries
}

func pipEntries(spec *envspec.EnvironmentSpec) map[string]string {
	entries := make(map[string]string)
	block, ok := spec.PipBlock()
	if !ok {
		return entries
	}
	for _, r := range block.Requirements {
		if r.Kind != envspec.PipPackage {
			continue
		}
		entries[r.Spec.Name] = r.Spec.String()
	}
	return entries
}

func editablePath(spec *envspec.EnvironmentSpec) string {
	block, ok := spec.PipBlock()
	if !ok {
		return ""
	}
	editables := block.EditableRequirements()
	if len(editables) == 0 {
		return ""
	}
	return editables[0].Path
}

func compareEntrySets(from, to map[string]string) DependencyDiff {
	var diff DependencyDiff

	for name, spec := range to {
		fromSpec, ok := from[name]
		if !ok {
			diff.Added = append(diff.Added, spec)
			continue
		}
		if fromSpec != spec {
			diff.Modified = append(diff.Modified, ModifiedDependency{
				Name: name,
				From: fromSpec,
				To:   spec,
			})
		}
	}
	for name, spec := range from {
		if _, ok := to[name]; !ok {
			diff.Removed = append(diff.Removed, spec)
		}
	}

	// Deterministic ordering for stable JSON
	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Slice(diff.Modified, func(i, j int) bool {
		return diff.Modified[i].Name < diff.Modified[j].Name
	})

	return diff
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
