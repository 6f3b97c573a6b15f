package prefs

import (
	"fmt"
	"math"
	"strconv"
)

// Property binds a named setting to one field of the settings struct S.
type Property[S any] struct {
	Name string
	Kind Kind
	// Inherited marks a property promoted from an embedded type. Inherited
	// properties are readable and writable but never persisted.
	Inherited bool

	get func(*S) Value
	set func(*S, Value) error
}

// Persisted reports whether the property is saved and restored.
func (p Property[S]) Persisted() bool {
	return p.Kind.Supported() && !p.Inherited
}

// Get reads the property from s.
func (p Property[S]) Get(s *S) Value {
	if p.get == nil || s == nil {
		return Value{}
	}
	return p.get(s)
}

// Set assigns v to the property on s. The value kind must match the property.
func (p Property[S]) Set(s *S, v Value) error {
	if p.set == nil {
		return fmt.Errorf("%w: property %q has no setter", ErrUnsupportedKind, p.Name)
	}
	if s == nil {
		return fmt.Errorf("prefs: set %q on nil settings", p.Name)
	}
	return p.set(s, v)
}

// String declares a text property.
func String[S any](name string, field func(*S) *string) Property[S] {
	p := Property[S]{Name: name, Kind: KindString}
	if field == nil {
		return p
	}
	p.get = func(s *S) Value { return StringValue(*field(s)) }
	p.set = func(s *S, v Value) error {
		text, ok := v.Text()
		if !ok {
			return kindError(name, KindString, v)
		}
		*field(s) = text
		return nil
	}
	return p
}

// Int declares an integer property backed by an int field.
func Int[S any](name string, field func(*S) *int) Property[S] {
	p := Property[S]{Name: name, Kind: KindInt}
	if field == nil {
		return p
	}
	p.get = func(s *S) Value { return IntValue(int64(*field(s))) }
	p.set = func(s *S, v Value) error {
		i, ok := v.Int()
		if !ok {
			return kindError(name, KindInt, v)
		}
		if strconv.IntSize == 32 && (i > math.MaxInt32 || i < math.MinInt32) {
			return fmt.Errorf("%w: %q value %d overflows int", ErrKindMismatch, name, i)
		}
		*field(s) = int(i)
		return nil
	}
	return p
}

// Float declares a floating-point property backed by a float64 field.
func Float[S any](name string, field func(*S) *float64) Property[S] {
	p := Property[S]{Name: name, Kind: KindFloat}
	if field == nil {
		return p
	}
	p.get = func(s *S) Value { return FloatValue(*field(s)) }
	p.set = func(s *S, v Value) error {
		f, ok := v.Float()
		if !ok {
			return kindError(name, KindFloat, v)
		}
		*field(s) = f
		return nil
	}
	return p
}

// Float32 declares a floating-point property backed by a float32 field.
func Float32[S any](name string, field func(*S) *float32) Property[S] {
	p := Property[S]{Name: name, Kind: KindFloat}
	if field == nil {
		return p
	}
	p.get = func(s *S) Value { return Float32Value(*field(s)) }
	p.set = func(s *S, v Value) error {
		f, ok := v.Float()
		if !ok {
			return kindError(name, KindFloat, v)
		}
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return fmt.Errorf("%w: %q value %g overflows float32", ErrKindMismatch, name, f)
		}
		*field(s) = float32(f)
		return nil
	}
	return p
}

// Opaque declares a field whose type is outside the supported set. It is part
// of the schema so callers can see it, but it is never persisted and cannot be
// set by name.
func Opaque[S any, V any](name string, _ func(*S) *V) Property[S] {
	return Property[S]{
		Name: name,
		Kind: KindUnsupported,
		get:  func(*S) Value { return Value{} },
	}
}

// Promoted marks p as inherited from an embedded type.
func Promoted[S any](p Property[S]) Property[S] {
	p.Inherited = true
	return p
}

func kindError(name string, want Kind, got Value) error {
	return fmt.Errorf("%w: %q expects %s, got %s", ErrKindMismatch, name, want, got.Kind())
}
