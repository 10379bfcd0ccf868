// Package matchspec parses the version constraint grammar shared by conda
// dependency entries and pip requirement lines:
//
//	<name> | <name><comparator><version>
//
// with comparator one of <, <=, =, ==, >= or >. The single "=" pin is only
// legal in conda entries; pip requires the double form.
package matchspec

import (
	"fmt"
	"strings"
)

// Flavor selects which package manager's constraint dialect applies.
type Flavor int

const (
	// Conda entries allow the fuzzy single "=" pin, e.g. python=3.11.
	Conda Flavor = iota
	// Pip entries follow the requirement-specifier comparators only.
	Pip
)

// Op is a version comparator.
type Op string

const (
	OpNone Op = ""
	OpPin  Op = "="
	OpEq   Op = "=="
	OpLT   Op = "<"
	OpLE   Op = "<="
	OpGE   Op = ">="
	OpGT   Op = ">"
)

// MatchSpec is one parsed package constraint.
type MatchSpec struct {
	Name    string
	Op      Op
	Version string
}

// HasConstraint reports whether the spec pins a version at all.
func (m MatchSpec) HasConstraint() bool {
	return m.Op != OpNone
}

// String re-serializes the spec in canonical form.
func (m MatchSpec) String() string {
	if m.Op == OpNone {
		return m.Name
	}
	return m.Name + string(m.Op) + m.Version
}

func isNameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' ||
		r == '[' || r == ']' || r == ','
}

// Parse parses a single constraint entry. The entry must already be a bare
// package spec: pip flag entries like "--editable ." are the caller's
// business, not a match spec.
func Parse(entry string, flavor Flavor) (MatchSpec, error) {
	s := strings.TrimSpace(entry)
	if s == "" {
		return MatchSpec{}, fmt.Errorf("empty dependency entry")
	}
	if strings.ContainsAny(s, " \t") {
		return MatchSpec{}, fmt.Errorf("dependency entry %q contains whitespace", entry)
	}

	// Split at the first comparator character.
	idx := strings.IndexAny(s, "<>=!~")
	if idx == -1 {
		if err := checkName(s); err != nil {
			return MatchSpec{}, err
		}
		return MatchSpec{Name: s}, nil
	}
	if idx == 0 {
		return MatchSpec{}, fmt.Errorf("dependency entry %q has no package name", entry)
	}

	name := s[:idx]
	rest := s[idx:]
	if err := checkName(name); err != nil {
		return MatchSpec{}, err
	}

	op, version, err := splitConstraint(rest)
	if err != nil {
		return MatchSpec{}, fmt.Errorf("dependency entry %q: %w", entry, err)
	}
	if flavor == Pip && op == OpPin {
		return MatchSpec{}, fmt.Errorf("dependency entry %q: pip requires '==', not '='", entry)
	}
	return MatchSpec{Name: name, Op: op, Version: version}, nil
}

func checkName(name string) error {
	for _, r := range name {
		if !isNameChar(r) {
			return fmt.Errorf("invalid character %q in package name %q", r, name)
		}
	}
	first := rune(name[0])
	if !(first >= 'a' && first <= 'z') && !(first >= 'A' && first <= 'Z') &&
		!(first >= '0' && first <= '9') {
		return fmt.Errorf("package name %q must start with a letter or digit", name)
	}
	return nil
}

func splitConstraint(rest string) (Op, string, error) {
	var op Op
	switch {
	case strings.HasPrefix(rest, "=="):
		op = OpEq
	case strings.HasPrefix(rest, "<="):
		op = OpLE
	case strings.HasPrefix(rest, ">="):
		op = OpGE
	case strings.HasPrefix(rest, "="):
		op = OpPin
	case strings.HasPrefix(rest, "<"):
		op = OpLT
	case strings.HasPrefix(rest, ">"):
		op = OpGT
	default:
		return OpNone, "", fmt.Errorf("unsupported comparator %q", rest)
	}

	version := rest[len(op):]
	if version == "" {
		return OpNone, "", fmt.Errorf("comparator %q has no version", op)
	}
	if strings.ContainsAny(version, "<>=!~") {
		return OpNone, "", fmt.Errorf("invalid version %q", version)
	}
	return op, version, nil
}
