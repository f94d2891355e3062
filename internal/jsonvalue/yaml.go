package jsonvalue

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedYAML is returned for YAML constructs with no JSON equivalent.
var ErrUnsupportedYAML = errors.New("unsupported YAML construct")

// DecodeYAML parses the first document of a YAML stream into the same tree
// Decode produces. Mapping order is preserved.
func DecodeYAML(data []byte, opts ...DecodeOption) (*Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, fmt.Errorf("empty YAML document")
	}
	y := &yamlDecoder{opts: newDecodeOptions(opts)}
	return y.node(&doc, "", 0)
}

type yamlDecoder struct {
	opts decodeOptions
	// aliases is the number of alias expansions in progress
	aliases int
	// expanded counts values produced under an alias
	expanded int
}

func (y *yamlDecoder) node(n *yaml.Node, path string, depth int) (*Value, error) {
	if y.aliases > 0 {
		y.expanded++
		if y.opts.maxAliasValues > 0 && y.expanded > y.opts.maxAliasValues {
			return nil, fmt.Errorf("%w: alias expansion exceeds %d values at %s", ErrUnsupportedYAML, y.opts.maxAliasValues, pointer(path))
		}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return y.node(n.Content[0], path, depth)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("%w: dangling alias at %s", ErrUnsupportedYAML, pointer(path))
		}
		y.aliases++
		defer func() { y.aliases-- }()
		return y.node(n.Alias, path, depth)
	case yaml.MappingNode:
		if y.opts.maxDepth > 0 && depth+1 > y.opts.maxDepth {
			return nil, fmt.Errorf("%w (%d) at %s", ErrMaxDepth, y.opts.maxDepth, pointer(path))
		}
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: non-scalar key at %s", ErrUnsupportedYAML, pointer(path))
			}
			v, err := y.node(n.Content[i+1], JoinPointer(path, k.Value), depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, v)
		}
		return &Value{Kind: KindObject, Object: obj}, nil
	case yaml.SequenceNode:
		if y.opts.maxDepth > 0 && depth+1 > y.opts.maxDepth {
			return nil, fmt.Errorf("%w (%d) at %s", ErrMaxDepth, y.opts.maxDepth, pointer(path))
		}
		items := make([]*Value, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := y.node(c, JoinPointer(path, strconv.Itoa(i)), depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return &Value{Kind: KindArray, Items: items}, nil
	case yaml.ScalarNode:
		return y.scalar(n, path)
	}
	return nil, fmt.Errorf("%w: node kind %d at %s", ErrUnsupportedYAML, n.Kind, pointer(path))
}

func (y *yamlDecoder) scalar(n *yaml.Node, path string) (*Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Num(strconv.FormatInt(i, 10)), nil
		}
		// Out of int64 range; keep the value as decimal digits so the
		// literal stays integral.
		b, ok := new(big.Int).SetString(n.Value, 0)
		if !ok {
			return nil, fmt.Errorf("%w: integer %s at %s", ErrUnsupportedYAML, n.Value, pointer(path))
		}
		return Num(b.String()), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %s at %s", ErrUnsupportedYAML, n.Value, pointer(path))
		}
		lit := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(lit, ".eE") {
			lit += ".0"
		}
		return Num(lit), nil
	default:
		return String(n.Value), nil
	}
}
