package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

var (
	// ErrMaxDepth is returned when a document nests deeper than allowed.
	ErrMaxDepth = errors.New("max depth exceeded")
	// ErrTrailingData is returned when input continues after the root value.
	ErrTrailingData = errors.New("unexpected data after top-level value")
)

const (
	// DefaultMaxDepth bounds nesting when no explicit limit is configured.
	DefaultMaxDepth = 64
	// DefaultMaxAliasValues bounds the values copied in by YAML aliases.
	DefaultMaxAliasValues = 100000
)

type decodeOptions struct {
	maxDepth       int
	maxAliasValues int
}

// DecodeOption configures Decode, DecodeReader and DecodeYAML.
type DecodeOption func(*decodeOptions)

// WithMaxDepth limits object/array nesting. Zero or negative disables the
// check.
func WithMaxDepth(depth int) DecodeOption {
	return func(o *decodeOptions) {
		o.maxDepth = depth
	}
}

// WithMaxAliasValues limits how many values YAML alias expansion may
// produce in one document. Zero or negative disables the check.
func WithMaxAliasValues(n int) DecodeOption {
	return func(o *decodeOptions) {
		o.maxAliasValues = n
	}
}

func newDecodeOptions(opts []DecodeOption) decodeOptions {
	o := decodeOptions{maxDepth: DefaultMaxDepth, maxAliasValues: DefaultMaxAliasValues}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Decode parses a single JSON document.
func Decode(data []byte, opts ...DecodeOption) (*Value, error) {
	return DecodeReader(bytes.NewReader(data), opts...)
}

// DecodeReader parses a single JSON document from r.
func DecodeReader(r io.Reader, opts ...DecodeOption) (*Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	td := &tokenDecoder{dec: dec, opts: newDecodeOptions(opts)}

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document: %w", io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	v, err := td.value(tok, "", 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return v, nil
}

type tokenDecoder struct {
	dec  *json.Decoder
	opts decodeOptions
}

func (d *tokenDecoder) value(tok json.Token, path string, depth int) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			if err := d.enter(path, depth); err != nil {
				return nil, err
			}
			return d.object(path, depth+1)
		case '[':
			if err := d.enter(path, depth); err != nil {
				return nil, err
			}
			return d.array(path, depth+1)
		}
		return nil, fmt.Errorf("unexpected delimiter %q at %s", rune(t), pointer(path))
	case string:
		return String(t), nil
	case json.Number:
		return Num(string(t)), nil
	case float64:
		return Num(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return nil, fmt.Errorf("unexpected token %v at %s", tok, pointer(path))
}

func (d *tokenDecoder) enter(path string, depth int) error {
	if d.opts.maxDepth > 0 && depth+1 > d.opts.maxDepth {
		return fmt.Errorf("%w (%d) at %s", ErrMaxDepth, d.opts.maxDepth, pointer(path))
	}
	return nil
}

func (d *tokenDecoder) object(path string, depth int) (*Value, error) {
	obj := NewObject()
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return &Value{Kind: KindObject, Object: obj}, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key at %s, got %v", pointer(path), tok)
		}
		vt, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		child := JoinPointer(path, key)
		v, err := d.value(vt, child, depth)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
}

func (d *tokenDecoder) array(path string, depth int) (*Value, error) {
	items := []*Value{}
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok && delim == ']' {
			return &Value{Kind: KindArray, Items: items}, nil
		}
		v, err := d.value(tok, JoinPointer(path, strconv.Itoa(len(items))), depth)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// JoinPointer appends one reference token to a JSON pointer (RFC 6901).
func JoinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}

func pointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
