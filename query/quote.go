package query

import "strings"

// Quoting is the delimiter used around literals. The zero value quotes with
// double quotes.
type Quoting byte

const (
	DoubleQuote Quoting = '"'
	SingleQuote Quoting = '\''
)

func (q Quoting) delim() byte {
	if q == 0 {
		return byte(DoubleQuote)
	}
	return byte(q)
}

// Quote wraps s in the delimiter and doubles every embedded delimiter.
func (q Quoting) Quote(s string) string {
	d := q.delim()
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte(d)
	for i := 0; i < len(s); i++ {
		if s[i] == d {
			sb.WriteByte(d)
		}
		sb.WriteByte(s[i])
	}
	sb.WriteByte(d)
	return sb.String()
}

// Quote quotes a value literal with the default delimiter.
func Quote(s string) string { return DoubleQuote.Quote(s) }

// QuoteName quotes an attribute name.
func QuoteName(name string) string { return DoubleQuote.Quote(name) }

// QuoteDomain quotes a domain name with backticks, doubling embedded ones.
func QuoteDomain(domain string) string {
	return "`" + strings.ReplaceAll(domain, "`", "``") + "`"
}
