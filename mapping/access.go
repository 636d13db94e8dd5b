package mapping

import (
	"fmt"
	"reflect"
)

// Access is how an attribute's value is read from and written to its
// owning struct.
type Access int

const (
	// PropertyPath reads and writes the field directly.
	PropertyPath Access = iota
	// ForwardReference stores a referenced mapped struct by its item name
	// and restores it as a struct holding only that item name.
	ForwardReference
)

func (a Access) String() string {
	if a == ForwardReference {
		return "forward_reference"
	}
	return "property_path"
}

// SelectAccess picks the access strategy from the declared field type and
// the kind of the stored attribute. It has no side effects.
func SelectAccess(declared reflect.Type, stored reflect.Kind) Access {
	t := base(declared)
	if stored != reflect.String || t.Kind() != reflect.Struct || t == timeType {
		return PropertyPath
	}
	if _, ok := itemNameIndex(t); ok {
		return ForwardReference
	}
	return PropertyPath
}

// itemNameIndex finds the string field tagged as item name.
func itemNameIndex(t reflect.Type) ([]int, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup(tagKey)
		if !ok || !f.IsExported() {
			continue
		}
		_, opts, err := parseTag(tag)
		if err != nil || !opts.itemName {
			continue
		}
		if f.Type.Kind() != reflect.String {
			return nil, false
		}
		return f.Index, true
	}
	return nil, false
}

// read returns the raw value to encode, or false when the field is absent
// (nil pointer or empty reference).
func (a *Attribute) read(record reflect.Value) (any, bool) {
	f := record.FieldByIndex(a.Index)
	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return nil, false
		}
		f = f.Elem()
	}
	if a.Access == ForwardReference {
		id := f.FieldByIndex(a.refIndex).String()
		return id, id != ""
	}
	return f.Interface(), true
}

// write stores a decoded value into the field.
func (a *Attribute) write(record reflect.Value, v any) error {
	f := record.FieldByIndex(a.Index)
	var val reflect.Value
	if a.Access == ForwardReference {
		id, ok := v.(string)
		if !ok {
			return fmt.Errorf("mapping: reference %s expects a string item name, got %T", a.Field, v)
		}
		target := reflect.New(base(a.Type)).Elem()
		target.FieldByIndex(a.refIndex).SetString(id)
		val = target
	} else {
		val = reflect.ValueOf(v)
	}

	if f.Kind() == reflect.Pointer {
		p := reflect.New(f.Type().Elem())
		if !val.Type().AssignableTo(p.Elem().Type()) {
			return fmt.Errorf("mapping: cannot assign %s to %s", val.Type(), a.Field)
		}
		p.Elem().Set(val)
		f.Set(p)
		return nil
	}
	if !val.Type().AssignableTo(f.Type()) {
		return fmt.Errorf("mapping: cannot assign %s to %s", val.Type(), a.Field)
	}
	f.Set(val)
	return nil
}
