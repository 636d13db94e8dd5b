// Package mapping turns tagged Go structs into attribute mappings: one
// converter per field, chosen once from the field's declared type.
//
//	type User struct {
//	    ID      string    `sdb:"id,itemname"`
//	    Age     int32     `sdb:"age"`
//	    Balance float64   `sdb:"balance,int=9,frac=2"`
//	    Joined  time.Time `sdb:"joined"`
//	    Status  Status    `sdb:"status,ordinal"`
//	    Team    *Team     `sdb:"team"` // stored as the team's item name
//	    Tags    string    `sdb:"tags,every"`
//	}
//
//	reg, _ := mapping.NewRegistry()
//	users, _ := reg.Describe(User{})
//	item, attrs, _ := users.Encode(u)
package mapping

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/manojoshi/sdborm/codec"
)

// Registry holds the codec defaults and caches one Entity per struct type.
type Registry struct {
	int32Cfg   codec.Config
	int64Cfg   codec.Config
	floatCfg   codec.Config
	dateLayout string
	log        *zap.Logger

	entities sync.Map // reflect.Type → *Entity
}

type Option func(*Registry)

func WithInt32(c codec.Config) Option { return func(r *Registry) { r.int32Cfg = c } }
func WithInt64(c codec.Config) Option { return func(r *Registry) { r.int64Cfg = c } }
func WithFloat(c codec.Config) Option { return func(r *Registry) { r.floatCfg = c } }

func WithDateLayout(layout string) Option { return func(r *Registry) { r.dateLayout = layout } }

func WithLogger(l *zap.Logger) Option { return func(r *Registry) { r.log = l } }

// NewRegistry validates the codec defaults up front so that a bad default
// fails at setup instead of on the first value.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		int32Cfg:   codec.DefaultInt32(),
		int64Cfg:   codec.DefaultInt64(),
		floatCfg:   codec.DefaultFloat(),
		dateLayout: DefaultDateLayout,
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.int32Cfg.Kind != codec.Int32 || r.int64Cfg.Kind != codec.Int64 || r.floatCfg.Kind != codec.Float {
		return nil, &codec.Error{Kind: codec.KindConfigurationRange, Msg: "codec default registered under the wrong kind"}
	}
	for _, c := range []codec.Config{r.int32Cfg, r.int64Cfg, r.floatCfg} {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	if r.dateLayout == "" {
		r.dateLayout = DefaultDateLayout
	}
	return r, nil
}

// Converter applies the selection policy to one declared attribute:
// date, then enum, then numeric, then pass-through.
func (r *Registry) Converter(a *Attribute) (Converter, error) {
	kind := Classify(a.Type)
	var (
		c   Converter
		err error
	)
	switch kind {
	case Date:
		layout := a.Layout
		if layout == "" {
			layout = r.dateLayout
		}
		c = dateConverter{layout: layout}
	case Enum:
		c, err = newEnumConverter(a.Type, a.Ordinal)
	case Int32:
		c, err = newIntConverter(Int32, a.Params.Apply(r.int32Cfg), a.Type)
	case Int64:
		c, err = newIntConverter(Int64, a.Params.Apply(r.int64Cfg), a.Type)
	case Float:
		c, err = newFloatConverter(a.Params.Apply(r.floatCfg), a.Type)
	default:
		c = passThrough{typ: base(a.Type)}
	}
	if err != nil {
		return nil, fmt.Errorf("mapping: attribute %s: %w", a.Name, err)
	}
	r.log.Debug("converter selected",
		zap.String("attribute", a.Name),
		zap.Stringer("type", a.Type),
		zap.Stringer("kind", kind),
	)
	return c, nil
}

// Describe builds (or returns the cached) Entity for model's struct type.
func (r *Registry) Describe(model any) (*Entity, error) {
	t := reflect.TypeOf(model)
	if t == nil {
		return nil, fmt.Errorf("mapping: nil model")
	}
	t = base(t)
	if e, ok := r.entities.Load(t); ok {
		return e.(*Entity), nil
	}
	e, err := r.build(t)
	if err != nil {
		return nil, err
	}
	actual, _ := r.entities.LoadOrStore(t, e)
	return actual.(*Entity), nil
}

func (r *Registry) build(t reflect.Type) (*Entity, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("mapping: %s is not a struct", t)
	}
	e := &Entity{Type: t, Domain: inferDomain(t), byName: make(map[string]*Attribute)}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup(tagKey)
		if !ok || tag == "-" || !f.IsExported() {
			continue
		}
		name, opts, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("mapping: %s.%s: %w", t.Name(), f.Name, err)
		}
		if name == "" {
			name = snake(f.Name)
		}
		a := &Attribute{
			Name:     name,
			Field:    f.Name,
			Index:    f.Index,
			Type:     f.Type,
			Every:    opts.every,
			ItemName: opts.itemName,
			Params:   opts.params,
			Layout:   opts.layout,
			Ordinal:  opts.ordinal,
		}

		if a.ItemName {
			if e.ItemName != nil {
				return nil, fmt.Errorf("mapping: %s declares two item names", t)
			}
			if f.Type.Kind() != reflect.String {
				return nil, fmt.Errorf("mapping: %s.%s: item name must be a string", t.Name(), f.Name)
			}
			a.Converter = passThrough{typ: f.Type}
			e.ItemName = a
			e.byName[a.Name] = a
			e.byName[f.Name] = a
			continue
		}

		if err := r.bind(a); err != nil {
			return nil, fmt.Errorf("mapping: %s.%s: %w", t.Name(), f.Name, err)
		}
		if _, dup := e.byName[a.Name]; dup {
			return nil, fmt.Errorf("mapping: %s maps attribute %q twice", t, a.Name)
		}
		e.Attributes = append(e.Attributes, a)
		e.byName[a.Name] = a
		if f.Name != a.Name {
			e.byName[f.Name] = a
		}
	}

	if e.ItemName == nil {
		return nil, fmt.Errorf("mapping: %s has no field tagged itemname", t)
	}
	return e, nil
}

// bind resolves access strategy and converter for a regular attribute.
func (r *Registry) bind(a *Attribute) error {
	bt := base(a.Type)
	stored := bt.Kind()
	if bt.Kind() == reflect.Struct && bt != timeType {
		// references to other structs are stored as strings
		stored = reflect.String
	}
	a.Access = SelectAccess(a.Type, stored)

	if a.Access == ForwardReference {
		idx, _ := itemNameIndex(bt)
		a.refIndex = idx
		a.Kind = PassThrough
		a.Converter = refConverter{target: bt, idIndex: idx}
		return nil
	}
	if bt.Kind() == reflect.Struct && bt != timeType {
		return fmt.Errorf("struct type %s has no item name to reference", bt)
	}
	switch bt.Kind() {
	case reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return fmt.Errorf("unsupported type %s", a.Type)
	case reflect.Slice, reflect.Array:
		if bt.Elem().Kind() != reflect.Uint8 || bt.Kind() == reflect.Array {
			return fmt.Errorf("unsupported type %s", a.Type)
		}
	}

	c, err := r.Converter(a)
	if err != nil {
		return err
	}
	a.Kind = c.Kind()
	a.Converter = c
	return nil
}
