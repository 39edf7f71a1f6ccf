package props

import (
	"fmt"
	"image/color"
)

// Kind describes the Go type a field stores in a bag.
type Kind int

const (
	KindFloat  Kind = iota // float64
	KindInt                // int
	KindString             // string
	KindColor              // color.RGBA
	KindByte               // uint8
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float64"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindColor:
		return "color.RGBA"
	case KindByte:
		return "uint8"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FieldInfo is the type-erased description of a bag key.
type FieldInfo struct {
	Name string
	Kind Kind
}

// Field binds one bag key to a typed field of T.
type Field[T any] struct {
	FieldInfo
	get func(*T) any
	set func(*T, any) bool
}

// typed builds a Field over a pointer accessor. The setter is the single
// place bag values are type checked: a value is accepted only if its
// dynamic type is exactly V.
func typed[T, V any](name string, kind Kind, ptr func(*T) *V) Field[T] {
	return Field[T]{
		FieldInfo: FieldInfo{Name: name, Kind: kind},
		get: func(o *T) any {
			return *ptr(o)
		},
		set: func(o *T, v any) bool {
			tv, ok := v.(V)
			if !ok {
				return false
			}
			*ptr(o) = tv
			return true
		},
	}
}

// Float declares a float64 field.
func Float[T any](name string, ptr func(*T) *float64) Field[T] {
	return typed(name, KindFloat, ptr)
}

// Int declares an int field.
func Int[T any](name string, ptr func(*T) *int) Field[T] {
	return typed(name, KindInt, ptr)
}

// String declares a string field.
func String[T any](name string, ptr func(*T) *string) Field[T] {
	return typed(name, KindString, ptr)
}

// Color declares a color.RGBA field.
func Color[T any](name string, ptr func(*T) *color.RGBA) Field[T] {
	return typed(name, KindColor, ptr)
}
