package speccompare

import (
	"fmt"
	"io"
	"strings"
)

// RenderText writes a human-readable rendering of a compare result. Mode is
// "summary", "diff", or "full".
func RenderText(w io.Writer, res SpecCompareResult, mode string) {
	fmt.Fprintf(w, "Comparing %s and %s\n", label(res.From), label(res.To))

	if res.Equal {
		fmt.Fprintln(w, "Manifests are equivalent")
		if mode != "full" {
			return
		}
	}

	renderSummary(w, res)
	if mode == "summary" {
		return
	}

	if res.Diff.Name != nil {
		fmt.Fprintf(w, "\nName:\n  - %s\n  + %s\n", res.Diff.Name.From, res.Diff.Name.To)
	}
	if res.Diff.Channels != nil {
		fmt.Fprintf(w, "\nChannels:\n  - [%s]\n  + [%s]\n",
			strings.Join(res.Diff.Channels.From, ", "),
			strings.Join(res.Diff.Channels.To, ", "))
	}
	renderDependencyDiff(w, "Conda dependencies", res.Diff.Conda)
	renderDependencyDiff(w, "Pip requirements", res.Diff.Pip)
	if res.Diff.Editable != nil {
		fmt.Fprintf(w, "\nEditable install:\n  - %s\n  + %s\n",
			orNone(res.Diff.Editable.From), orNone(res.Diff.Editable.To))
	}
}

func renderSummary(w io.Writer, res SpecCompareResult) {
	fmt.Fprintf(w, "Added: %d, removed: %d, modified: %d\n",
		res.Summary.AddedCount, res.Summary.RemovedCount, res.Summary.ModifiedCount)

	var changed []string
	if res.Summary.NameChanged {
		changed = append(changed, "name")
	}
	if res.Summary.ChannelsChanged {
		changed = append(changed, "channels")
	}
	if res.Summary.CondaChanged {
		changed = append(changed, "conda")
	}
	if res.Summary.PipChanged {
		changed = append(changed, "pip")
	}
	if res.Summary.EditableChanged {
		changed = append(changed, "editable")
	}
	if len(changed) > 0 {
		fmt.Fprintf(w, "Changed sections: %s\n", strings.Join(changed, ", "))
	}
}

func renderDependencyDiff(w io.Writer, title string, diff DependencyDiff) {
	if !diff.changed() {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, entry := range diff.Removed {
		fmt.Fprintf(w, "  - %s\n", entry)
	}
	for _, entry := range diff.Added {
		fmt.Fprintf(w, "  + %s\n", entry)
	}
	for _, mod := range diff.Modified {
		fmt.Fprintf(w, "  ~ %s: %s -> %s\n", mod.Name, mod.From, mod.To)
	}
}

func label(s SpecSummary) string {
	if s.File != "" {
		return s.File
	}
	return s.Name
}

func orNone(path string) string {
	if path == "" {
		return "(none)"
	}
	return path
}
