package prefs

import (
	"fmt"
	"reflect"
	"strings"
)

const tagName = "prefs"

// Derive builds a Schema for S from its struct fields. It is meant to run once
// at startup; the returned schema does no further type inspection beyond the
// field accessors it captures.
//
// Rules:
//   - the key is the `prefs` tag name, or the field name when untagged;
//     `prefs:"-"` skips the field
//   - string, int, int8..int64, float32 and float64 map to the supported
//     kinds; named types (time.Duration, custom string types) and every other
//     type are declared with KindUnsupported
//   - fields promoted from embedded structs, exported or not, are declared
//     Inherited; embedded pointers and unexported fields are skipped
func Derive[S any]() (*Schema[S], error) {
	t := reflect.TypeFor[S]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("prefs: derive %s: settings type must be a struct", t)
	}

	var found []derivedField
	collectFields(t, nil, 0, &found)

	props, err := resolveFields[S](found)
	if err != nil {
		return nil, fmt.Errorf("prefs: derive %s: %w", t, err)
	}
	return NewSchema(props...)
}

type derivedField struct {
	name  string
	depth int
	field reflect.StructField
}

// collectFields lists candidate fields in declaration order. Embedded structs
// are walked after the fields of their parent.
func collectFields(t reflect.Type, parent []int, depth int, out *[]derivedField) {
	var embedded []reflect.StructField

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		field.Index = append(append([]int(nil), parent...), i)

		// Exported fields of an unexported embedded struct are still promoted.
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			embedded = append(embedded, field)
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Pointer {
			continue
		}
		if !field.IsExported() {
			continue
		}

		name, skip := fieldKey(field)
		if skip {
			continue
		}
		*out = append(*out, derivedField{name: name, depth: depth, field: field})
	}

	for _, field := range embedded {
		if tag := field.Tag.Get(tagName); tag == "-" {
			continue
		}
		collectFields(field.Type, field.Index, depth+1, out)
	}
}

// resolveFields keeps the shallowest field for every key. Two fields sharing
// a key at the same depth are ambiguous.
func resolveFields[S any](found []derivedField) ([]Property[S], error) {
	shallowest := make(map[string]int, len(found))
	for _, f := range found {
		if d, ok := shallowest[f.name]; !ok || f.depth < d {
			shallowest[f.name] = f.depth
		}
	}

	taken := make(map[string]string, len(shallowest))
	props := make([]Property[S], 0, len(shallowest))
	for _, f := range found {
		if f.depth != shallowest[f.name] {
			continue
		}
		if other, dup := taken[f.name]; dup {
			return nil, fmt.Errorf("%w: %q used by fields %s and %s", ErrDuplicateProperty, f.name, other, f.field.Name)
		}
		taken[f.name] = f.field.Name

		p := reflectProperty[S](f.name, f.field)
		p.Inherited = f.depth > 0
		props = append(props, p)
	}
	return props, nil
}

func fieldKey(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get(tagName)
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, false
}

func reflectKind(t reflect.Type) (Kind, int) {
	if t.PkgPath() != "" {
		return KindUnsupported, 0
	}
	switch t.Kind() {
	case reflect.String:
		return KindString, 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt, 0
	case reflect.Float32:
		return KindFloat, 32
	case reflect.Float64:
		return KindFloat, 64
	default:
		return KindUnsupported, 0
	}
}

func reflectProperty[S any](name string, field reflect.StructField) Property[S] {
	kind, bits := reflectKind(field.Type)
	index := field.Index
	p := Property[S]{Name: name, Kind: kind}

	fieldOf := func(s *S) reflect.Value {
		return reflect.ValueOf(s).Elem().FieldByIndex(index)
	}

	switch kind {
	case KindString:
		p.get = func(s *S) Value { return StringValue(fieldOf(s).String()) }
	case KindInt:
		p.get = func(s *S) Value { return IntValue(fieldOf(s).Int()) }
	case KindFloat:
		if bits == 32 {
			p.get = func(s *S) Value { return Float32Value(float32(fieldOf(s).Float())) }
		} else {
			p.get = func(s *S) Value { return FloatValue(fieldOf(s).Float()) }
		}
	default:
		p.get = func(*S) Value { return Value{} }
		return p
	}

	p.set = func(s *S, v Value) error {
		fv := fieldOf(s)
		if !fv.CanSet() {
			return fmt.Errorf("prefs: field for %q is not settable", name)
		}
		if v.Kind() != kind {
			return kindError(name, kind, v)
		}
		switch kind {
		case KindString:
			text, _ := v.Text()
			fv.SetString(text)
		case KindInt:
			i, _ := v.Int()
			if fv.OverflowInt(i) {
				return fmt.Errorf("%w: %q value %d overflows %s", ErrKindMismatch, name, i, fv.Type())
			}
			fv.SetInt(i)
		case KindFloat:
			f, _ := v.Float()
			if fv.OverflowFloat(f) {
				return fmt.Errorf("%w: %q value %g overflows %s", ErrKindMismatch, name, f, fv.Type())
			}
			fv.SetFloat(f)
		}
		return nil
	}
	return p
}
