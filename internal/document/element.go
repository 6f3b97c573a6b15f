package document

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrType is returned when an element is read as a type it does not hold.
var ErrType = errors.New("document: element type mismatch")

// Type identifies the JSON kind an Element was decoded from.
type Type uint8

const (
	TypeNull Type = iota
	TypeString
	TypeNumber
	TypeBool
	TypeObject
	TypeArray
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "bool"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Element is one top-level value of a document. Numbers keep their literal
// text so integer and floating-point readers can apply their own rules.
type Element struct {
	typ    Type
	text   string
	number json.Number
}

// StringElement builds an element holding s.
func StringElement(s string) Element {
	return Element{typ: TypeString, text: s}
}

// NumberElement builds an element holding the number literal n.
func NumberElement(n json.Number) Element {
	return Element{typ: TypeNumber, number: n}
}

func (e Element) Type() Type {
	return e.typ
}

// Text returns the string payload.
func (e Element) Text() (string, error) {
	if e.typ != TypeString {
		return "", e.mismatch(TypeString)
	}
	return e.text, nil
}

// Int64 returns the number payload when it is an integral literal that fits in
// 64 bits. Literals with a fraction or exponent are rejected.
func (e Element) Int64() (int64, error) {
	if e.typ != TypeNumber {
		return 0, e.mismatch(TypeNumber)
	}
	v, err := e.number.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: number %s is not an integer: %v", ErrType, e.number, err)
	}
	return v, nil
}

// Float64 returns the number payload as a float64.
func (e Element) Float64() (float64, error) {
	if e.typ != TypeNumber {
		return 0, e.mismatch(TypeNumber)
	}
	v, err := e.number.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: number %s is out of range: %v", ErrType, e.number, err)
	}
	return v, nil
}

func (e Element) mismatch(want Type) error {
	return fmt.Errorf("%w: have %s, want %s", ErrType, e.typ, want)
}

func elementFrom(value any) (Element, error) {
	switch typed := value.(type) {
	case nil:
		return Element{typ: TypeNull}, nil
	case string:
		return StringElement(typed), nil
	case json.Number:
		return NumberElement(typed), nil
	case bool:
		return Element{typ: TypeBool}, nil
	case map[string]any:
		return Element{typ: TypeObject}, nil
	case []any:
		return Element{typ: TypeArray}, nil
	default:
		return Element{}, fmt.Errorf("document: unexpected decoded value %T", value)
	}
}
