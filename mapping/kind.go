package mapping

import (
	"reflect"
	"strconv"
	"time"
)

// ValueKind is the closed set of converter families. It is resolved once
// per declared attribute.
type ValueKind int

const (
	PassThrough ValueKind = iota
	Date
	Enum
	Int32
	Int64
	Float
)

func (k ValueKind) String() string {
	switch k {
	case PassThrough:
		return "passthrough"
	case Date:
		return "date"
	case Enum:
		return "enum"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float:
		return "float"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Enumeration is implemented by types whose values are a fixed, ordered set
// of named members. The member list is read from the zero value.
//
//	type Status int
//	func (Status) Members() []string { return []string{"pending", "shipped"} }
type Enumeration interface {
	Members() []string
}

var (
	timeType = reflect.TypeOf(time.Time{})
	enumType = reflect.TypeOf((*Enumeration)(nil)).Elem()
)

// Classify picks the converter family for a declared Go type. Pointers are
// classified by their element type.
func Classify(t reflect.Type) ValueKind {
	t = base(t)
	switch {
	case t == timeType:
		return Date
	case isEnum(t):
		return Enum
	}
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return Int32
	case reflect.Int, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Int64
	case reflect.Float32, reflect.Float64:
		return Float
	default:
		return PassThrough
	}
}

func isEnum(t reflect.Type) bool {
	return t.Implements(enumType) || reflect.PointerTo(t).Implements(enumType)
}

func enumMembers(t reflect.Type) []string {
	if t.Implements(enumType) {
		return reflect.Zero(t).Interface().(Enumeration).Members()
	}
	return reflect.New(t).Interface().(Enumeration).Members()
}

func base(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
