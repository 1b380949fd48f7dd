// Package dictionary holds the reference table of known lab tests: canonical
// names, aliases, units, default normal ranges and explanation templates.
package dictionary

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/lab-report-explainer/internal/domain"
)

//go:embed data/references.yaml
var builtinYAML []byte

var (
	defaultOnce sync.Once
	defaultDict *Dictionary
)

// Dictionary is an immutable, ordered set of test references. It is safe for
// concurrent use.
type Dictionary struct {
	refs    []domain.TestReference
	byName  map[string]int
	byAlias map[string]int
}

// New validates refs and builds a dictionary preserving their order
func New(refs []domain.TestReference) (*Dictionary, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("dictionary has no entries")
	}

	d := &Dictionary{
		refs:    make([]domain.TestReference, 0, len(refs)),
		byName:  make(map[string]int, len(refs)),
		byAlias: make(map[string]int),
	}

	for i, ref := range refs {
		if err := validateReference(ref); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		key := normalizeKey(ref.Name)
		if _, dup := d.byName[key]; dup {
			return nil, fmt.Errorf("entry %d: duplicate canonical name %q", i, ref.Name)
		}

		ref.Aliases = append([]string(nil), ref.Aliases...)
		d.refs = append(d.refs, ref)
		d.byName[key] = i

		// Earlier entries keep an alias if two references share it
		for _, term := range append([]string{ref.Name}, ref.Aliases...) {
			k := normalizeKey(term)
			if k == "" {
				continue
			}
			if _, taken := d.byAlias[k]; !taken {
				d.byAlias[k] = i
			}
		}
	}

	return d, nil
}

// Default returns the built-in dictionary
func Default() *Dictionary {
	defaultOnce.Do(func() {
		d, err := Parse(builtinYAML)
		if err != nil {
			panic(fmt.Sprintf("built-in dictionary is invalid: %v", err))
		}
		defaultDict = d
	})
	return defaultDict
}

// All returns every reference in dictionary order. The slice is a copy.
func (d *Dictionary) All() []domain.TestReference {
	out := make([]domain.TestReference, len(d.refs))
	copy(out, d.refs)
	return out
}

// Len returns the number of references
func (d *Dictionary) Len() int {
	return len(d.refs)
}

// Lookup finds a reference by exact, case-insensitive canonical name
func (d *Dictionary) Lookup(name string) (domain.TestReference, bool) {
	i, ok := d.byName[normalizeKey(name)]
	if !ok {
		return domain.TestReference{}, false
	}
	return d.refs[i], true
}

// Resolve finds a reference by canonical name or any alias, ignoring case
func (d *Dictionary) Resolve(nameOrAlias string) (domain.TestReference, bool) {
	i, ok := d.byAlias[normalizeKey(nameOrAlias)]
	if !ok {
		return domain.TestReference{}, false
	}
	return d.refs[i], true
}

func validateReference(ref domain.TestReference) error {
	if strings.TrimSpace(ref.Name) == "" {
		return domain.NewValidationError("name", "canonical name is required", ref.Name)
	}
	if !ref.NormalRange.Valid() {
		return domain.NewValidationError("normal_range",
			fmt.Sprintf("%s: low must be non-negative and below high", ref.Name), ref.NormalRange)
	}
	for _, status := range domain.AllStatuses {
		if strings.TrimSpace(ref.Explanations.For(status)) == "" {
			return domain.NewValidationError("explanations",
				fmt.Sprintf("%s: missing %s template", ref.Name, status), nil)
		}
	}
	return nil
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
