package query

import (
	"strings"

	"github.com/manojoshi/sdborm/internal"
)

// Compile turns an Expr tree into the text of a where clause.
// It is exported so callers can preview the predicate
// (handy for logging or offline explain).
func Compile(e Expr) string {
	if e == nil {
		return ""
	}
	sb := internal.GetBuilder()
	defer internal.PutBuilder(sb)
	e.compile(sb)
	return sb.String()
}

// -------------------------------------------------------------------
// node writers – kept in a central file so cross-node helpers don’t
// cause import cycles. Only expr.go’s structs know about these funcs.
// -------------------------------------------------------------------

func (n *cond) compile(sb *strings.Builder) {
	sb.WriteString(n.d.Describe())
	sb.WriteByte(' ')
	sb.WriteString(n.m.Describe())
}

func (n *cmp) compile(sb *strings.Builder) {
	sb.WriteString(n.d.Describe())
	sb.WriteByte(' ')
	sb.WriteString(string(n.op))
	sb.WriteByte(' ')
	sb.WriteString(Quote(n.val))
}

func (n *between) compile(sb *strings.Builder) {
	sb.WriteString(n.d.Describe())
	sb.WriteString(" between ")
	sb.WriteString(Quote(n.lo))
	sb.WriteString(" and ")
	sb.WriteString(Quote(n.hi))
}

func (n *and) compile(sb *strings.Builder) { group(sb, n.xs, " and ") }
func (n *or) compile(sb *strings.Builder)  { group(sb, n.xs, " or ") }

func (n *not) compile(sb *strings.Builder) {
	sb.WriteString("not (")
	n.x.compile(sb)
	sb.WriteByte(')')
}

// group helper for (a and b) / (a or b)
func group(sb *strings.Builder, xs []Expr, sep string) {
	sb.WriteByte('(')
	for i, x := range xs {
		if i > 0 {
			sb.WriteString(sep)
		}
		x.compile(sb)
	}
	sb.WriteByte(')')
}
