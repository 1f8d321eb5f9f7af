package catalogue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Resolve when a key path does not exist.
var ErrNotFound = errors.New("catalogue key not found")

// Decode parses a JSON catalogue. The top level must be an object.
// Null, scalar, and empty values are skipped; arrays become leaves.
// Every test case must carry an id, and ids must be unique.
func Decode(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode catalogue: top level must be an object")
	}
	root, err := decodeJSONObject(dec, "")
	if err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode catalogue: trailing data after top-level object")
	}
	return finish(root)
}

// DecodeYAML parses a YAML catalogue with the same rules as Decode.
func DecodeYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("decode catalogue: empty document")
	}
	top := doc.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("decode catalogue: top level must be a mapping")
	}
	root, err := decodeYAMLNode(top, "")
	if err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	return finish(root)
}

// Load reads a catalogue from fs, choosing the decoder by file extension.
func Load(fs afero.Fs, path string) (*Node, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return Decode(data)
	}
}

// Resolve follows a dotted key path such as "mobile_application.customer_application".
// An empty path returns n itself.
func (n *Node) Resolve(path string) (*Node, error) {
	if path == "" {
		return n, nil
	}
	cur := n
	for _, key := range strings.Split(path, ".") {
		next := cur.Child(key)
		if next == nil {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
		}
		cur = next
	}
	return cur, nil
}

// finish normalises an empty root and checks id uniqueness.
func finish(root *Node) (*Node, error) {
	if root == nil {
		root = &Node{Kind: KindGroup}
	}
	if _, err := NewIndex(root); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	return root, nil
}

// decodeJSONObject reads object members until the closing brace. The opening
// brace has already been consumed. It returns nil for an object with no usable children.
func decodeJSONObject(dec *json.Decoder, key string) (*Node, error) {
	node := &Node{Kind: KindGroup, Key: key}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		childKey, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		child, err := decodeJSONValue(dec, childKey)
		if err != nil {
			return nil, err
		}
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if len(node.Children) == 0 {
		return nil, nil
	}
	return node, nil
}

func decodeJSONValue(dec *json.Decoder, key string) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		// scalars and null carry no test cases
		return nil, nil
	}
	switch d {
	case '{':
		return decodeJSONObject(dec, key)
	case '[':
		return decodeJSONArray(dec, key)
	default:
		return nil, fmt.Errorf("unexpected delimiter %q under %q", d, key)
	}
}

func decodeJSONArray(dec *json.Decoder, key string) (*Node, error) {
	node := &Node{Kind: KindLeaf, Key: key}
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var tc TestCase
		if err := json.Unmarshal(raw, &tc); err != nil {
			return nil, fmt.Errorf("test case under %q: %w", key, err)
		}
		if tc.ID == "" {
			return nil, fmt.Errorf("test case under %q has no id", key)
		}
		node.Cases = append(node.Cases, tc)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if len(node.Cases) == 0 {
		return nil, nil
	}
	return node, nil
}

func decodeYAMLNode(y *yaml.Node, key string) (*Node, error) {
	if y.Kind == yaml.AliasNode && y.Alias != nil {
		y = y.Alias
	}
	switch y.Kind {
	case yaml.MappingNode:
		node := &Node{Kind: KindGroup, Key: key}
		for i := 0; i+1 < len(y.Content); i += 2 {
			childKey := y.Content[i].Value
			child, err := decodeYAMLNode(y.Content[i+1], childKey)
			if err != nil {
				return nil, err
			}
			if child != nil {
				node.Children = append(node.Children, child)
			}
		}
		if len(node.Children) == 0 {
			return nil, nil
		}
		return node, nil
	case yaml.SequenceNode:
		node := &Node{Kind: KindLeaf, Key: key}
		for _, item := range y.Content {
			if item.Kind == yaml.ScalarNode && item.Tag == "!!null" {
				continue
			}
			var tc TestCase
			if err := item.Decode(&tc); err != nil {
				return nil, fmt.Errorf("test case under %q: %w", key, err)
			}
			if tc.ID == "" {
				return nil, fmt.Errorf("test case under %q has no id", key)
			}
			node.Cases = append(node.Cases, tc)
		}
		if len(node.Cases) == 0 {
			return nil, nil
		}
		return node, nil
	default:
		return nil, nil
	}
}
