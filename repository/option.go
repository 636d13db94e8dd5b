package repository

import (
	"fmt"

	"github.com/manojoshi/sdborm/mapping"
	q "github.com/manojoshi/sdborm/query"
)

// Opt is applied to the select builder. Attribute names are resolved
// against the model's entity, so a stored name or a Go field name works.
type Opt interface {
	applySelect(*mapping.Entity, *q.SelectBuilder) error
}

type optFunc func(*mapping.Entity, *q.SelectBuilder) error

func (o optFunc) applySelect(e *mapping.Entity, b *q.SelectBuilder) error { return o(e, b) }

// Fields restricts the output to the named attributes.
func Fields(names ...string) Opt {
	return optFunc(func(e *mapping.Entity, b *q.SelectBuilder) error {
		ds := make([]q.Descriptor, 0, len(names))
		for _, n := range names {
			a, err := lookup(e, n)
			if err != nil {
				return err
			}
			ds = append(ds, a.Descriptor())
		}
		b.Select(ds...)
		return nil
	})
}

// Limit caps the number of items returned.
func Limit(n int) Opt {
	return optFunc(func(_ *mapping.Entity, b *q.SelectBuilder) error {
		b.Limit(n)
		return nil
	})
}

// Count selects count(*) instead of attributes.
func Count() Opt {
	return optFunc(func(_ *mapping.Entity, b *q.SelectBuilder) error {
		b.Count()
		return nil
	})
}

// SortAsc / SortDesc order by one attribute.
func SortAsc(name string) Opt  { return sortOpt(name, q.Asc) }
func SortDesc(name string) Opt { return sortOpt(name, q.Desc) }

func sortOpt(name string, dir q.Dir) Opt {
	return optFunc(func(e *mapping.Entity, b *q.SelectBuilder) error {
		a, err := lookup(e, name)
		if err != nil {
			return err
		}
		b.SortBy(a.Descriptor(), dir)
		return nil
	})
}

func lookup(e *mapping.Entity, name string) (*mapping.Attribute, error) {
	a, ok := e.Attribute(name)
	if !ok {
		return nil, fmt.Errorf("repository: %s has no attribute %q", e.Type, name)
	}
	return a, nil
}
