package mapping

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/manojoshi/sdborm/codec"
	q "github.com/manojoshi/sdborm/query"
)

const tagKey = "sdb"

// Domainer lets a model pick its domain name. Without it the snake_cased
// type name is used.
type Domainer interface {
	Domain() string
}

// CodecParams overrides the registry's codec defaults for one attribute.
type CodecParams struct {
	Padding        *int
	Offset         *uint64
	IntegerDigits  *int
	FractionDigits *int
}

// Apply returns c with every set parameter replaced.
func (p CodecParams) Apply(c codec.Config) codec.Config {
	if p.Padding != nil {
		c.Padding = *p.Padding
	}
	if p.Offset != nil {
		c.Offset = *p.Offset
	}
	if p.IntegerDigits != nil {
		c.IntegerDigits = *p.IntegerDigits
	}
	if p.FractionDigits != nil {
		c.FractionDigits = *p.FractionDigits
	}
	return c
}

// Attribute is the declared-attribute metadata for one struct field.
type Attribute struct {
	Name     string // stored attribute name
	Field    string // Go field name
	Index    []int
	Type     reflect.Type // declared field type
	Every    bool
	ItemName bool
	Params   CodecParams
	Layout   string
	Ordinal  bool

	Kind      ValueKind
	Access    Access
	Converter Converter

	refIndex []int
}

// Descriptor returns the query descriptor naming this attribute.
func (a *Attribute) Descriptor() q.Descriptor {
	switch {
	case a.ItemName:
		return q.ItemName
	case a.Every:
		return q.Every(a.Name)
	default:
		return q.Attr(a.Name)
	}
}

// Eq builds `attr = "v"` with v encoded by the attribute's converter.
func (a *Attribute) Eq(v any) (q.Expr, error) { return a.match(q.Eq(v)) }

// In builds `attr in (...)`.
func (a *Attribute) In(vs ...any) (q.Expr, error) { return a.match(q.In(vs...)) }

func (a *Attribute) IsNull() q.Expr    { return q.Where(a.Descriptor(), mustBuild(q.IsNull())) }
func (a *Attribute) IsNotNull() q.Expr { return q.Where(a.Descriptor(), mustBuild(q.IsNotNull())) }

// Cmp builds a comparison against the encoded form of v.
func (a *Attribute) Cmp(op q.Op, v any) (q.Expr, error) {
	s, err := a.Converter.EncodeValue(v)
	if err != nil {
		return nil, fmt.Errorf("mapping: %s: %w", a.Name, err)
	}
	return q.Cmp(a.Descriptor(), op, s), nil
}

func (a *Attribute) Between(lo, hi any) (q.Expr, error) {
	l, err := a.Converter.EncodeValue(lo)
	if err != nil {
		return nil, fmt.Errorf("mapping: %s: %w", a.Name, err)
	}
	h, err := a.Converter.EncodeValue(hi)
	if err != nil {
		return nil, fmt.Errorf("mapping: %s: %w", a.Name, err)
	}
	return q.Between(a.Descriptor(), l, h), nil
}

func (a *Attribute) match(v *q.Values) (q.Expr, error) {
	m, err := v.With(a.Converter).Build()
	if err != nil {
		return nil, fmt.Errorf("mapping: %s: %w", a.Name, err)
	}
	return q.Where(a.Descriptor(), m), nil
}

// mustBuild is for null checks, which never encode.
func mustBuild(v *q.Values) q.Matcher {
	m, err := v.Build()
	if err != nil {
		panic("mapping: " + err.Error())
	}
	return m
}

// Encode reads and encodes the attribute from a struct value. ok is false
// when the field holds no value.
func (a *Attribute) Encode(record reflect.Value) (s string, ok bool, err error) {
	raw, ok := a.read(record)
	if !ok {
		return "", false, nil
	}
	s, err = a.Converter.EncodeValue(raw)
	if err != nil {
		return "", false, fmt.Errorf("mapping: encode %s: %w", a.Field, err)
	}
	return s, true, nil
}

// Assign decodes s and stores it into the attribute's field of record,
// which must be addressable.
func (a *Attribute) Assign(record reflect.Value, s string) error {
	v, err := a.Converter.DecodeValue(s)
	if err != nil {
		return fmt.Errorf("mapping: decode %s: %w", a.Field, err)
	}
	return a.write(record, v)
}

// Entity is the mapping of one struct type onto a domain.
type Entity struct {
	Type       reflect.Type
	Domain     string
	ItemName   *Attribute
	Attributes []*Attribute

	byName map[string]*Attribute
}

// Attribute looks up an attribute by stored name or Go field name.
func (e *Entity) Attribute(name string) (*Attribute, bool) {
	a, ok := e.byName[name]
	return a, ok
}

// Attr is Attribute for callers that know the name exists.
func (e *Entity) Attr(name string) *Attribute {
	a, ok := e.byName[name]
	if !ok {
		panic(fmt.Sprintf("mapping: %s has no attribute %q", e.Type, name))
	}
	return a
}

// Encode returns the item name and the encoded attributes of record.
// Absent fields are left out.
func (e *Entity) Encode(record any) (string, map[string]string, error) {
	rv, err := e.value(record)
	if err != nil {
		return "", nil, err
	}
	item := rv.FieldByIndex(e.ItemName.Index).String()
	if item == "" {
		return "", nil, fmt.Errorf("mapping: %s has an empty item name", e.Type)
	}
	attrs := make(map[string]string, len(e.Attributes))
	for _, a := range e.Attributes {
		s, ok, err := a.Encode(rv)
		if err != nil {
			return "", nil, err
		}
		if ok {
			attrs[a.Name] = s
		}
	}
	return item, attrs, nil
}

func (e *Entity) value(record any) (reflect.Value, error) {
	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("mapping: nil %s", e.Type)
		}
		rv = rv.Elem()
	}
	if rv.Type() != e.Type {
		return reflect.Value{}, fmt.Errorf("mapping: entity %s cannot encode %s", e.Type, rv.Type())
	}
	return rv, nil
}

// Names returns the stored attribute names in sorted order.
func (e *Entity) Names() []string {
	out := make([]string, 0, len(e.Attributes))
	for _, a := range e.Attributes {
		out = append(out, a.Name)
	}
	sort.Strings(out)
	return out
}

// ------------------------------------------------------------------
// tags
// ------------------------------------------------------------------

type tagOpts struct {
	itemName bool
	every    bool
	ordinal  bool
	layout   string
	params   CodecParams
}

// parseTag reads `sdb:"name,opt,opt=value"`.
func parseTag(tag string) (string, tagOpts, error) {
	var opts tagOpts
	parts := strings.Split(tag, ",")
	name := strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		key, val, _ := strings.Cut(strings.TrimSpace(p), "=")
		switch strings.ToLower(key) {
		case "":
		case "itemname":
			opts.itemName = true
		case "every":
			opts.every = true
		case "ordinal":
			opts.ordinal = true
		case "layout":
			opts.layout = val
		case "pad", "int", "frac":
			n, err := strconv.Atoi(val)
			if err != nil {
				return "", opts, fmt.Errorf("mapping: tag option %q: %w", p, err)
			}
			switch strings.ToLower(key) {
			case "pad":
				opts.params.Padding = &n
			case "int":
				opts.params.IntegerDigits = &n
			default:
				opts.params.FractionDigits = &n
			}
		case "offset":
			n, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return "", opts, fmt.Errorf("mapping: tag option %q: %w", p, err)
			}
			opts.params.Offset = &n
		default:
			return "", opts, fmt.Errorf("mapping: unknown tag option %q", p)
		}
	}
	return name, opts, nil
}

// inferDomain defaults to the struct type name snake_cased.
func inferDomain(t reflect.Type) string {
	if d, ok := reflect.Zero(t).Interface().(Domainer); ok {
		return d.Domain()
	}
	if d, ok := reflect.New(t).Interface().(Domainer); ok {
		return d.Domain()
	}
	return snake(t.Name())
}

// snake converts CamelCase to snake_case.
func snake(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			sb.WriteByte('_')
		}
		sb.WriteRune(r)
	}
	return strings.ToLower(sb.String())
}
