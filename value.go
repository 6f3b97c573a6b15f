package prefs

import (
	"fmt"
	"strconv"
)

// Kind identifies the primitive type of a property. Only KindString, KindInt
// and KindFloat are persisted.
type Kind uint8

const (
	KindUnsupported Kind = iota
	KindString
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "unsupported"
	}
}

// Supported reports whether values of k are persisted.
func (k Kind) Supported() bool {
	return k == KindString || k == KindInt || k == KindFloat
}

// Value is a tagged union over the supported kinds. The zero Value has
// KindUnsupported and holds nothing.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	bits int
}

// StringValue wraps s.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// IntValue wraps i.
func IntValue(i int64) Value {
	return Value{kind: KindInt, num: i}
}

// FloatValue wraps a 64-bit float.
func FloatValue(f float64) Value {
	return Value{kind: KindFloat, flt: f, bits: 64}
}

// Float32Value wraps a 32-bit float. It encodes with the shortest
// representation that round-trips at 32-bit precision.
func Float32Value(f float32) Value {
	return Value{kind: KindFloat, flt: float64(f), bits: 32}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Text returns the string payload.
func (v Value) Text() (string, bool) {
	return v.str, v.kind == KindString
}

// Int returns the integer payload.
func (v Value) Int() (int64, bool) {
	return v.num, v.kind == KindInt
}

// Float returns the floating-point payload.
func (v Value) Float() (float64, bool) {
	return v.flt, v.kind == KindFloat
}

// Interface returns the payload as a plain Go value: string, int64, float32
// or float64. The zero Value returns nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		if v.bits == 32 {
			return float32(v.flt)
		}
		return v.flt
	default:
		return nil
	}
}

// Equal reports whether v and other hold the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindInt:
		return v.num == other.num
	case KindFloat:
		return v.flt == other.flt
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		bits := v.bits
		if bits == 0 {
			bits = 64
		}
		return strconv.FormatFloat(v.flt, 'g', -1, bits)
	default:
		return "<unsupported>"
	}
}

// ParseValue converts text into a Value of the given kind.
func ParseValue(kind Kind, text string) (Value, error) {
	switch kind {
	case KindString:
		return StringValue(text), nil
	case KindInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an int: %v", ErrKindMismatch, text, err)
		}
		return IntValue(i), nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a float: %v", ErrKindMismatch, text, err)
		}
		return FloatValue(f), nil
	default:
		return Value{}, fmt.Errorf("%w: kind %s", ErrUnsupportedKind, kind)
	}
}

func zeroValue(kind Kind) Value {
	switch kind {
	case KindString:
		return StringValue("")
	case KindInt:
		return IntValue(0)
	case KindFloat:
		return FloatValue(0)
	default:
		return Value{}
	}
}
