// Package catalogue decodes the nested test-case catalogue into a typed tree.
//
// A catalogue is a document whose objects group test cases by application area
// and whose arrays hold the test cases themselves. Decoding turns that shape into
// a Node tree up front, so the rest of qarun never sniffs JSON shapes at runtime.
package catalogue

import (
	"regexp"
	"strings"
)

// TestCase is a single scripted scenario awaiting a verdict.
type TestCase struct {
	ID             string `json:"id" yaml:"id"`
	Feature        string `json:"feature" yaml:"feature"`
	Scenario       string `json:"scenario" yaml:"scenario"`
	Steps          string `json:"steps" yaml:"steps"`
	ExpectedResult string `json:"expected_result" yaml:"expected_result"`
}

var stepNumberRe = regexp.MustCompile(`^\d+\.\s*`)

// StepList splits Steps into individual instructions with "1. " style
// numbering removed. Blank lines are dropped.
func (tc TestCase) StepList() []string {
	if strings.TrimSpace(tc.Steps) == "" {
		return nil
	}
	lines := strings.Split(tc.Steps, "\n")
	steps := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" {
			continue
		}
		steps = append(steps, stepNumberRe.ReplaceAllString(line, ""))
	}
	return steps
}

// Kind identifies the variant held by a Node.
type Kind int

const (
	// KindGroup nodes hold named children.
	KindGroup Kind = iota + 1
	// KindLeaf nodes hold test cases.
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Node is one element of the catalogue tree: either a Group of named children
// or a Leaf holding test cases. Children keep the order of the source document.
type Node struct {
	Kind     Kind
	Key      string
	Children []*Node
	Cases    []TestCase
}

// IsLeaf reports whether n holds test cases.
func (n *Node) IsLeaf() bool { return n != nil && n.Kind == KindLeaf }

// Child returns the direct child with the given key, or nil.
func (n *Node) Child(key string) *Node {
	if n == nil || n.Kind != KindGroup {
		return nil
	}
	for _, c := range n.Children {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// Keys returns the keys of the direct children in document order.
func (n *Node) Keys() []string {
	if n == nil || n.Kind != KindGroup {
		return nil
	}
	keys := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		keys = append(keys, c.Key)
	}
	return keys
}

// WalkFunc is called for every test case in document order.
// path holds the keys from the root down to the leaf that owns tc.
type WalkFunc func(path []string, tc TestCase) error

// Walk visits every test case below n depth-first, in document order.
// It stops at the first error returned by fn.
func (n *Node) Walk(fn WalkFunc) error {
	return n.walk(nil, fn)
}

func (n *Node) walk(path []string, fn WalkFunc) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindLeaf:
		for _, tc := range n.Cases {
			if err := fn(path, tc); err != nil {
				return err
			}
		}
	case KindGroup:
		for _, c := range n.Children {
			childPath := append(append([]string(nil), path...), c.Key)
			if err := c.walk(childPath, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// CaseCount returns the number of test cases below n.
func (n *Node) CaseCount() int {
	count := 0
	_ = n.Walk(func([]string, TestCase) error {
		count++
		return nil
	})
	return count
}
