package prefs

import "fmt"

// Schema is the ordered set of properties declared for a settings struct. It
// is built once at startup and never changes afterwards.
type Schema[S any] struct {
	props []Property[S]
	index map[string]int
}

// NewSchema builds a schema from props in declaration order. Names must be
// unique and non-empty; every supported property needs an accessor.
func NewSchema[S any](props ...Property[S]) (*Schema[S], error) {
	s := &Schema[S]{
		props: make([]Property[S], 0, len(props)),
		index: make(map[string]int, len(props)),
	}
	for _, p := range props {
		if p.Name == "" {
			return nil, fmt.Errorf("prefs: property name must not be empty")
		}
		if _, exists := s.index[p.Name]; exists {
			return nil, fmt.Errorf("%w: %q declared twice", ErrDuplicateProperty, p.Name)
		}
		if p.Kind.Supported() && (p.get == nil || p.set == nil) {
			return nil, fmt.Errorf("prefs: property %q has no field accessor", p.Name)
		}
		s.index[p.Name] = len(s.props)
		s.props = append(s.props, p)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. It is intended for
// package-level schema variables.
func MustSchema[S any](props ...Property[S]) *Schema[S] {
	s, err := NewSchema(props...)
	if err != nil {
		panic(err)
	}
	return s
}

// Properties returns every declared property in declaration order.
func (s *Schema[S]) Properties() []Property[S] {
	if s == nil {
		return nil
	}
	return append([]Property[S](nil), s.props...)
}

// Supported returns, in declaration order, the properties that are persisted:
// those of a supported kind that are declared directly on S.
func (s *Schema[S]) Supported() []Property[S] {
	if s == nil {
		return nil
	}
	out := make([]Property[S], 0, len(s.props))
	for _, p := range s.props {
		if p.Persisted() {
			out = append(out, p)
		}
	}
	return out
}

// Lookup returns the declared property called name.
func (s *Schema[S]) Lookup(name string) (Property[S], bool) {
	if s == nil {
		return Property[S]{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Property[S]{}, false
	}
	return s.props[i], true
}

// Len reports the number of declared properties.
func (s *Schema[S]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.props)
}
