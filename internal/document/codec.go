package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed is returned when a payload is not a single JSON object.
var ErrMalformed = errors.New("document: malformed")

// Field is one named value written to a document, in output order.
type Field struct {
	Name  string
	Value any
}

// Document is a decoded top-level JSON object.
type Document map[string]Element

// Lookup returns the element stored under name.
func (d Document) Lookup(name string) (Element, bool) {
	e, ok := d[name]
	return e, ok
}

// EncodeOption configures Encode.
type EncodeOption func(*encodeConfig)

type encodeConfig struct {
	prefix string
	indent string
}

// WithIndent overrides the indentation used for the encoded document.
func WithIndent(prefix, indent string) EncodeOption {
	return func(cfg *encodeConfig) {
		cfg.prefix = prefix
		cfg.indent = indent
	}
}

// Encode writes fields as one JSON object preserving their order. The result
// is indented and ends with a newline.
func Encode(fields []Field, opts ...EncodeOption) ([]byte, error) {
	cfg := encodeConfig{indent: "  "}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	seen := make(map[string]struct{}, len(fields))
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, field := range fields {
		if _, dup := seen[field.Name]; dup {
			return nil, fmt.Errorf("document: duplicate field %q", field.Name)
		}
		seen[field.Name] = struct{}{}
		if i > 0 {
			compact.WriteByte(',')
		}
		if err := writeValue(&compact, field.Name); err != nil {
			return nil, fmt.Errorf("document: encode key %q: %w", field.Name, err)
		}
		compact.WriteByte(':')
		if err := writeValue(&compact, field.Value); err != nil {
			return nil, fmt.Errorf("document: encode %q: %w", field.Name, err)
		}
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), cfg.prefix, cfg.indent); err != nil {
		return nil, fmt.Errorf("document: indent: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, value any) error {
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(scratch.Bytes(), "\n"))
	return nil
}

// Decode parses payload as a single JSON object. Empty input, a null or
// non-object root and trailing data are all reported as ErrMalformed.
func Decode(payload []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty payload", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: root is null", ErrMalformed)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after root object", ErrMalformed)
	}

	doc := make(Document, len(raw))
	for name, value := range raw {
		element, err := elementFrom(value)
		if err != nil {
			return nil, err
		}
		doc[name] = element
	}
	return doc, nil
}
