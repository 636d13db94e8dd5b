package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// -------------------------------------------------------------------
// SelectBuilder – fluent builder for select statements
// -------------------------------------------------------------------

type Dir string

const (
	Asc  Dir = "asc"
	Desc Dir = "desc"
)

// MaxLimit is the largest page the store returns for one select.
const MaxLimit = 2500

type SelectBuilder struct {
	domain string
	where  Expr
	fields []Descriptor
	count  bool
	sortBy Descriptor
	dir    Dir
	limit  int
}

// NewSelect starts a builder over one domain.
func NewSelect(domain string) *SelectBuilder {
	return &SelectBuilder{domain: domain}
}

func (b *SelectBuilder) Where(e Expr) *SelectBuilder { b.where = e; return b }
func (b *SelectBuilder) Select(ds ...Descriptor) *SelectBuilder {
	b.fields = append([]Descriptor{}, ds...)
	return b
}
func (b *SelectBuilder) Count() *SelectBuilder { b.count = true; return b }
func (b *SelectBuilder) SortBy(d Descriptor, dir Dir) *SelectBuilder {
	b.sortBy, b.dir = d, dir
	return b
}
func (b *SelectBuilder) Limit(n int) *SelectBuilder { b.limit = n; return b }

// Statement renders the complete select expression.
func (b *SelectBuilder) Statement() (string, error) {
	if b.domain == "" {
		return "", errors.New("query: select needs a domain")
	}
	if b.limit < 0 || b.limit > MaxLimit {
		return "", fmt.Errorf("query: limit %d outside [0,%d]", b.limit, MaxLimit)
	}

	var where string
	if b.where != nil {
		where = Compile(b.where)
	}

	var sb strings.Builder
	sb.WriteString("select ")
	switch {
	case b.count:
		sb.WriteString("count(*)")
	case len(b.fields) == 0:
		sb.WriteByte('*')
	default:
		for i, d := range b.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(d.Describe())
		}
	}
	sb.WriteString(" from ")
	sb.WriteString(QuoteDomain(b.domain))

	if where != "" {
		sb.WriteString(" where ")
		sb.WriteString(where)
	}

	if b.sortBy != nil {
		// the store only sorts on attributes constrained by the where clause
		if b.where == nil || !constrains(b.where, b.sortBy) {
			return "", fmt.Errorf("query: sort attribute %s must appear in the where clause", b.sortBy.Describe())
		}
		dir := b.dir
		if dir == "" {
			dir = Asc
		}
		sb.WriteString(" order by ")
		sb.WriteString(b.sortBy.Describe())
		sb.WriteByte(' ')
		sb.WriteString(string(dir))
	}

	if b.limit > 0 {
		sb.WriteString(" limit ")
		sb.WriteString(strconv.Itoa(b.limit))
	}
	return sb.String(), nil
}
