package mapping

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/manojoshi/sdborm/codec"
)

// Converter maps values of one declared Go type to and from their stored
// string form. Converters are built once per attribute and are safe for
// concurrent use.
type Converter interface {
	Kind() ValueKind
	EncodeValue(v any) (string, error)
	// DecodeValue returns a value of the declared (non-pointer) type.
	DecodeValue(s string) (any, error)
}

// DefaultDateLayout sorts correctly because dates are always written in UTC.
const DefaultDateLayout = "2006-01-02T15:04:05.000Z07:00"

func indirect(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("mapping: cannot encode nil %s", rv.Type())
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return reflect.Value{}, fmt.Errorf("mapping: cannot encode nil value")
	}
	return rv, nil
}

// ---------------------------------------------------------------------
// numeric
// ---------------------------------------------------------------------

type intConverter struct {
	kind ValueKind
	c    *codec.IntCodec
	typ  reflect.Type
}

func newIntConverter(kind ValueKind, cfg codec.Config, typ reflect.Type) (*intConverter, error) {
	c, err := codec.NewInt(cfg)
	if err != nil {
		return nil, err
	}
	return &intConverter{kind: kind, c: c, typ: base(typ)}, nil
}

func (ic *intConverter) Kind() ValueKind { return ic.kind }

func (ic *intConverter) EncodeValue(v any) (string, error) {
	rv, err := indirect(v)
	if err != nil {
		return "", err
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ic.c.Encode(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return "", &codec.Error{Kind: codec.KindOffsetRange, Value: strconv.FormatUint(u, 10), Msg: "exceeds int64"}
		}
		return ic.c.Encode(int64(u))
	default:
		return "", fmt.Errorf("mapping: %s converter cannot encode %s", ic.kind, rv.Type())
	}
}

func (ic *intConverter) DecodeValue(s string) (any, error) {
	n, err := ic.c.Decode(s)
	if err != nil {
		return nil, err
	}
	out := reflect.New(ic.typ).Elem()
	switch out.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if out.OverflowInt(n) {
			return nil, &codec.Error{Kind: codec.KindMagnitudeExceedsTypeMax, Value: s, Msg: "exceeds " + ic.typ.String()}
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if n < 0 || out.OverflowUint(uint64(n)) {
			return nil, &codec.Error{Kind: codec.KindMagnitudeExceedsTypeMax, Value: s, Msg: "outside " + ic.typ.String()}
		}
		out.SetUint(uint64(n))
	default:
		return nil, fmt.Errorf("mapping: cannot decode integer into %s", ic.typ)
	}
	return out.Interface(), nil
}

type floatConverter struct {
	c   *codec.FloatCodec
	typ reflect.Type
}

func newFloatConverter(cfg codec.Config, typ reflect.Type) (*floatConverter, error) {
	c, err := codec.NewFloat(cfg)
	if err != nil {
		return nil, err
	}
	return &floatConverter{c: c, typ: base(typ)}, nil
}

func (fc *floatConverter) Kind() ValueKind { return Float }

func (fc *floatConverter) EncodeValue(v any) (string, error) {
	rv, err := indirect(v)
	if err != nil {
		return "", err
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return fc.c.Encode(rv.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fc.c.Encode(float64(rv.Int()))
	default:
		return "", fmt.Errorf("mapping: float converter cannot encode %s", rv.Type())
	}
}

func (fc *floatConverter) DecodeValue(s string) (any, error) {
	f, err := fc.c.Decode(s)
	if err != nil {
		return nil, err
	}
	out := reflect.New(fc.typ).Elem()
	if out.OverflowFloat(f) {
		return nil, &codec.Error{Kind: codec.KindMagnitudeExceedsTypeMax, Value: s, Msg: "exceeds " + fc.typ.String()}
	}
	out.SetFloat(f)
	return out.Interface(), nil
}

// ---------------------------------------------------------------------
// date
// ---------------------------------------------------------------------

type dateConverter struct{ layout string }

func (dc dateConverter) Kind() ValueKind { return Date }

func (dc dateConverter) EncodeValue(v any) (string, error) {
	rv, err := indirect(v)
	if err != nil {
		return "", err
	}
	t, ok := rv.Interface().(time.Time)
	if !ok {
		return "", fmt.Errorf("mapping: date converter cannot encode %s", rv.Type())
	}
	return t.UTC().Format(dc.layout), nil
}

func (dc dateConverter) DecodeValue(s string) (any, error) {
	t, err := time.Parse(dc.layout, s)
	if err != nil {
		return nil, fmt.Errorf("mapping: parse date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ---------------------------------------------------------------------
// enum
// ---------------------------------------------------------------------

type enumConverter struct {
	typ     reflect.Type
	members []string
	index   map[string]int
	ordinal *codec.IntCodec // nil for name encoding
}

func newEnumConverter(typ reflect.Type, ordinal bool) (*enumConverter, error) {
	typ = base(typ)
	switch typ.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return nil, fmt.Errorf("mapping: enum %s must be a string or integer type", typ)
	}
	members := enumMembers(typ)
	if len(members) == 0 {
		return nil, fmt.Errorf("mapping: enum %s declares no members", typ)
	}
	ec := &enumConverter{typ: typ, members: members, index: make(map[string]int, len(members))}
	for i, m := range members {
		if _, dup := ec.index[m]; dup {
			return nil, fmt.Errorf("mapping: enum %s declares %q twice", typ, m)
		}
		ec.index[m] = i
	}
	if ordinal {
		c, err := codec.NewInt(codec.Config{
			Kind:    codec.Int32,
			Padding: len(strconv.Itoa(len(members) - 1)),
		})
		if err != nil {
			return nil, err
		}
		ec.ordinal = c
	}
	return ec, nil
}

func (ec *enumConverter) Kind() ValueKind { return Enum }

func (ec *enumConverter) EncodeValue(v any) (string, error) {
	rv, err := indirect(v)
	if err != nil {
		return "", err
	}
	idx := -1
	switch rv.Kind() {
	case reflect.String:
		if i, ok := ec.index[rv.String()]; ok {
			idx = i
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n := rv.Int(); n >= 0 && n < int64(len(ec.members)) {
			idx = int(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if n := rv.Uint(); n < uint64(len(ec.members)) {
			idx = int(n)
		}
	}
	if idx < 0 {
		return "", fmt.Errorf("mapping: %v is not a member of %s", rv.Interface(), ec.typ)
	}
	if ec.ordinal != nil {
		return ec.ordinal.Encode(int64(idx))
	}
	return ec.members[idx], nil
}

func (ec *enumConverter) DecodeValue(s string) (any, error) {
	idx := -1
	if ec.ordinal != nil {
		n, err := ec.ordinal.Decode(s)
		if err != nil {
			return nil, err
		}
		if n >= 0 && n < int64(len(ec.members)) {
			idx = int(n)
		}
	} else if i, ok := ec.index[s]; ok {
		idx = i
	}
	if idx < 0 {
		return nil, fmt.Errorf("mapping: %q is not a member of %s", s, ec.typ)
	}

	out := reflect.New(ec.typ).Elem()
	switch out.Kind() {
	case reflect.String:
		out.SetString(ec.members[idx])
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out.SetUint(uint64(idx))
	default:
		out.SetInt(int64(idx))
	}
	return out.Interface(), nil
}

// ---------------------------------------------------------------------
// pass-through
// ---------------------------------------------------------------------

type passThrough struct{ typ reflect.Type }

func (pt passThrough) Kind() ValueKind { return PassThrough }

func (pt passThrough) EncodeValue(v any) (string, error) {
	rv, err := indirect(v)
	if err != nil {
		return "", err
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes()), nil
		}
	}
	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return s.String(), nil
	}
	return "", fmt.Errorf("mapping: cannot encode %s as a string attribute", rv.Type())
}

func (pt passThrough) DecodeValue(s string) (any, error) {
	out := reflect.New(pt.typ).Elem()
	switch out.Kind() {
	case reflect.String:
		out.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("mapping: parse bool %q: %w", s, err)
		}
		out.SetBool(b)
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("mapping: parse uint %q: %w", s, err)
		}
		out.SetUint(u)
	case reflect.Slice:
		if pt.typ.Elem().Kind() != reflect.Uint8 {
			return nil, fmt.Errorf("mapping: cannot decode into %s", pt.typ)
		}
		out.SetBytes([]byte(s))
	default:
		return nil, fmt.Errorf("mapping: cannot decode into %s", pt.typ)
	}
	return out.Interface(), nil
}

// ---------------------------------------------------------------------
// forward reference
// ---------------------------------------------------------------------

// refConverter stores a reference to another mapped struct as that
// struct's item name.
type refConverter struct {
	target  reflect.Type // struct type
	idIndex []int
}

func (rc refConverter) Kind() ValueKind { return PassThrough }

func (rc refConverter) EncodeValue(v any) (string, error) {
	rv, err := indirect(v)
	if err != nil {
		return "", err
	}
	switch {
	case rv.Kind() == reflect.String:
		return rv.String(), nil
	case rv.Type() == rc.target:
		return rv.FieldByIndex(rc.idIndex).String(), nil
	}
	return "", fmt.Errorf("mapping: reference to %s cannot encode %s", rc.target, rv.Type())
}

func (rc refConverter) DecodeValue(s string) (any, error) { return s, nil }
