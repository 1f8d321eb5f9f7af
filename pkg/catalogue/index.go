package catalogue

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrDuplicateID is returned when two test cases share an id.
var ErrDuplicateID = errors.New("duplicate test case id")

// Index is an id -> TestCase lookup over one catalogue tree.
// It is built once and shared read-only by the form, the exporter, and the analyzer.
type Index struct {
	cases map[string]TestCase
	paths map[string][]string
	order []string
}

// NewIndex walks root and indexes every test case by id.
func NewIndex(root *Node) (*Index, error) {
	idx := &Index{
		cases: make(map[string]TestCase),
		paths: make(map[string][]string),
	}
	err := root.Walk(func(path []string, tc TestCase) error {
		if prev, ok := idx.paths[tc.ID]; ok {
			return fmt.Errorf("%w %q at %s and %s", ErrDuplicateID, tc.ID,
				strings.Join(prev, "."), strings.Join(path, "."))
		}
		idx.cases[tc.ID] = tc
		idx.paths[tc.ID] = path
		idx.order = append(idx.order, tc.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Lookup returns the test case with the given id.
func (idx *Index) Lookup(id string) (TestCase, bool) {
	if idx == nil {
		return TestCase{}, false
	}
	tc, ok := idx.cases[id]
	return tc, ok
}

// Path returns the key path of the leaf holding id.
func (idx *Index) Path(id string) []string {
	if idx == nil {
		return nil
	}
	return idx.paths[id]
}

// IDs returns all ids in catalogue order.
func (idx *Index) IDs() []string {
	if idx == nil {
		return nil
	}
	return append([]string(nil), idx.order...)
}

// Len returns the number of indexed test cases.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.order)
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// FormatTitle turns a catalogue key like "login_registration" into "Login Registration".
func FormatTitle(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' })
	for i, w := range words {
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}
