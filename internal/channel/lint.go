package channel

import (
	"fmt"

	"github.com/notebook-tools/env-composer/internal/envspec"
)

// Problem is one availability finding from Lint.
type Problem struct {
	Package string
	Detail  string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Package, p.Detail)
}

// Lint checks that every conda dependency of the manifest is known to at
// least one of the loaded channel indexes. It checks name presence only;
// version solving belongs to the external resolver.
func Lint(spec *envspec.EnvironmentSpec, indexes []*Index) []Problem {
	var problems []Problem

	for _, dep := range spec.CondaDependencies() {
		found := false
		for _, idx := range indexes {
			if idx.HasPackage(dep.Name) {
				found = true
				break
			}
		}
		if !found {
			problems = append(problems, Problem{
				Package: dep.Name,
				Detail:  fmt.Sprintf("not found in any of %d synced indexes", len(indexes)),
			})
		}
	}

	return problems
}
