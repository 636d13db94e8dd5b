// Package query builds predicate expressions and select statements over
// sortably encoded attributes.
//
//	import q "github.com/manojoshi/sdborm/query"
//
//	ages, _ := q.In(30, 31).With(ageCodec).Build()
//	blue, _ := q.Eq("blue").Build()
//	filter := q.And(
//	    q.Where(q.Attr("age"), ages),
//	    q.Where(q.Every("tags"), blue),
//	)
//	q.Compile(filter) // ("age" in ("0030","0031") and every("tags") = "blue")
package query

import (
	"strings"
)

// -------------------------------------------------------------------
// Expr – the root interface. Every node knows how to write itself
// into a strings.Builder. Compile logic lives in compile.go so nodes
// stay dumb data containers.
// -------------------------------------------------------------------

type Expr interface {
	compile(*strings.Builder)
}

// Op is a comparison operator over encoded values.
type Op string

const (
	OpEq      Op = "="
	OpNe      Op = "!="
	OpLt      Op = "<"
	OpLe      Op = "<="
	OpGt      Op = ">"
	OpGe      Op = ">="
	OpLike    Op = "like"
	OpNotLike Op = "not like"
)

// ------------
// Leaf nodes
// ------------

// Where(Attr("age"), m)  ➜  "age" in ("005","007")
func Where(d Descriptor, m Matcher) Expr { return &cond{d, m} }

// Cmp(Attr("age"), OpGt, "005")  ➜  "age" > "005"
//
// encoded must already be in stored form.
func Cmp(d Descriptor, op Op, encoded string) Expr { return &cmp{d, op, encoded} }

// Between(Attr("age"), "005", "009")  ➜  "age" between "005" and "009"
func Between(d Descriptor, lo, hi string) Expr { return &between{d, lo, hi} }

// ------------
// Combinators
// ------------

func And(xs ...Expr) Expr { return combine(xs, func(xs []Expr) Expr { return &and{xs} }) }
func Or(xs ...Expr) Expr  { return combine(xs, func(xs []Expr) Expr { return &or{xs} }) }
func Not(x Expr) Expr     { return &not{x} }

func combine(xs []Expr, mk func([]Expr) Expr) Expr {
	kept := make([]Expr, 0, len(xs))
	for _, x := range xs {
		if x != nil && !isMatchAll(x) {
			kept = append(kept, x)
		}
	}
	switch len(kept) {
	case 0:
		return MatchAll()
	case 1:
		return kept[0]
	}
	return mk(kept)
}

// -------------------------------------------------------------------
// internal node types
// -------------------------------------------------------------------

type (
	cond struct {
		d Descriptor
		m Matcher
	}
	cmp struct {
		d   Descriptor
		op  Op
		val string
	}
	between struct {
		d      Descriptor
		lo, hi string
	}
	and struct{ xs []Expr }
	or  struct{ xs []Expr }
	not struct{ x Expr }
)

// MatchAll is the empty filter; it compiles to nothing.
func MatchAll() Expr { return matchAll{} }

type matchAll struct{}

func (matchAll) compile(*strings.Builder) {}

func isMatchAll(e Expr) bool {
	_, ok := e.(matchAll)
	return ok
}

// constrains reports whether some predicate in e applies to the attribute
// d names. every(x) constrains x.
func constrains(e Expr, d Descriptor) bool {
	switch n := e.(type) {
	case *cond:
		return sameAttr(n.d, d)
	case *cmp:
		return sameAttr(n.d, d)
	case *between:
		return sameAttr(n.d, d)
	case *and:
		for _, x := range n.xs {
			if constrains(x, d) {
				return true
			}
		}
	case *or:
		for _, x := range n.xs {
			if constrains(x, d) {
				return true
			}
		}
	case *not:
		return constrains(n.x, d)
	}
	return false
}

func sameAttr(a, b Descriptor) bool { return attrKey(a) == attrKey(b) }

func attrKey(d Descriptor) string {
	if e, ok := d.(every); ok {
		return e.plain.Describe()
	}
	return d.Describe()
}
