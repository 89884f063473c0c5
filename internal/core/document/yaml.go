package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses a single YAML (or JSON) document into the value tree.
// Node tags of the form !type:<Tag> become *Tagged values.
func ParseYAML(data []byte) (Value, error) {
	values, err := DecodeYAML(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	default:
		return nil, fmt.Errorf("%w: expected one document, found %d", ErrMalformedDocument, len(values))
	}
}

// DecodeYAML reads every document of a YAML stream.
func DecodeYAML(r io.Reader) ([]Value, error) {
	dec := yaml.NewDecoder(r)
	var out []Value
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		v, err := FromNode(&node)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

// maxAliasExpansions bounds how many aliases one document may expand, which
// keeps nested anchors from multiplying into an unbounded tree.
const maxAliasExpansions = 10000

// FromNode converts a yaml.v3 node into the value tree. Aliases are expanded;
// an anchor that contains itself is malformed.
func FromNode(n *yaml.Node) (Value, error) {
	c := &converter{expanding: make(map[*yaml.Node]bool)}
	return c.fromNode(n, "$")
}

type converter struct {
	// expanding holds the alias targets currently being converted.
	expanding map[*yaml.Node]bool
	aliases   int
}

func (c *converter) fromNode(n *yaml.Node, path string) (Value, error) {
	if n == nil {
		return nil, nil
	}
	if tag, ok := strings.CutPrefix(n.Tag, VariantPrefix); ok {
		if tag == "" {
			return nil, Malformed(path, "empty variant tag")
		}
		inner := *n
		inner.Tag = ""
		if n.Kind == yaml.MappingNode {
			inner.Tag = "!!map"
		}
		body, err := c.fromNode(&inner, path)
		if err != nil {
			return nil, err
		}
		return &Tagged{Tag: tag, Value: body}, nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.fromNode(n.Content[0], path)
	case yaml.AliasNode:
		return c.fromAlias(n, path)
	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, item := range n.Content {
			v, err := c.fromNode(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case yaml.MappingNode:
		return c.fromMapping(n, path)
	case yaml.ScalarNode:
		return fromScalar(n, path)
	default:
		return nil, Malformed(path, "unsupported node kind %d", n.Kind)
	}
}

func (c *converter) fromAlias(n *yaml.Node, path string) (Value, error) {
	if c.expanding[n.Alias] {
		return nil, Malformed(path, "anchor %q contains itself", n.Value)
	}
	c.aliases++
	if c.aliases > maxAliasExpansions {
		return nil, Malformed(path, "more than %d alias expansions", maxAliasExpansions)
	}
	c.expanding[n.Alias] = true
	defer delete(c.expanding, n.Alias)
	return c.fromNode(n.Alias, path)
}

func (c *converter) fromMapping(n *yaml.Node, path string) (Value, error) {
	if len(n.Content)%2 != 0 {
		return nil, Malformed(path, "odd mapping content")
	}
	m := NewMap()
	for i := 0; i < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, Malformed(path, "mapping key must be a scalar at line %d", keyNode.Line)
		}
		key := keyNode.Value
		if m.Has(key) {
			return nil, Malformed(path, "duplicate key %q at line %d", key, keyNode.Line)
		}
		v, err := c.fromNode(valNode, path+"."+key)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	// JSON-friendly form: { "!type:Tag": { ... } }
	if m.Len() == 1 {
		key := m.keys[0]
		if tag, ok := strings.CutPrefix(key, VariantPrefix); ok && tag != "" {
			return &Tagged{Tag: tag, Value: m.values[key]}, nil
		}
	}
	return m, nil
}

func fromScalar(n *yaml.Node, path string) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!str", "!!binary", "!!timestamp":
		return n.Value, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, Malformed(path, "%v", err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, Malformed(path, "%v", err)
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, Malformed(path, "%v", err)
		}
		return f, nil
	default:
		return nil, Malformed(path, "unsupported tag %q", n.Tag)
	}
}
