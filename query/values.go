package query

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/manojoshi/sdborm/codec"
	"github.com/manojoshi/sdborm/internal"
)

// Encoder turns a raw value into its stored string form. codec.IntCodec,
// codec.FloatCodec and mapping converters all satisfy it.
type Encoder interface {
	EncodeValue(v any) (string, error)
}

type op uint8

const (
	opInvalid op = iota
	opNull
	opNotNull
	opEq
	opIn
)

var errEmptyMembership = errors.New("query: membership needs at least one value")

// Values collects the raw side of a predicate. Attach an encoder with With,
// then Build (or Describe) to obtain the immutable Matcher. A Values is
// sealed once built; calling With or Quote afterwards panics.
//
//	m, err := query.In(5, 7).With(c).Build()
//	m.Describe() // in ("005","007")
type Values struct {
	op     op
	values []any
	enc    Encoder
	quote  Quoting
	strict bool
	sealed bool
}

// Eq matches a single value.
func Eq(v any) *Values { return &Values{op: opEq, values: []any{v}} }

// In matches any of vs. Order is kept and duplicates are allowed.
func In(vs ...any) *Values {
	return &Values{op: opIn, values: append([]any(nil), vs...)}
}

func IsNull() *Values    { return &Values{op: opNull} }
func IsNotNull() *Values { return &Values{op: opNotNull} }

// With attaches the encoder used for every value.
func (b *Values) With(e Encoder) *Values {
	b.mustOpen("With")
	b.enc = e
	return b
}

// Quote switches the literal delimiter.
func (b *Values) Quote(q Quoting) *Values {
	b.mustOpen("Quote")
	b.quote = q
	return b
}

// Strict makes Build fail with a missing configuration error when a numeric
// value has no encoder, instead of falling back to its natural text.
func (b *Values) Strict() *Values {
	b.mustOpen("Strict")
	b.strict = true
	return b
}

func (b *Values) mustOpen(method string) {
	if b.sealed {
		panic("query: Values." + method + " called after Build")
	}
}

// Build encodes every value and seals the builder.
func (b *Values) Build() (Matcher, error) {
	b.sealed = true
	m := Matcher{op: b.op, quote: b.quote}
	switch b.op {
	case opNull, opNotNull:
		return m, nil
	case opIn:
		if len(b.values) == 0 {
			return Matcher{}, errEmptyMembership
		}
	}
	m.encoded = make([]string, len(b.values))
	for i, v := range b.values {
		s, err := b.encode(v)
		if err != nil {
			return Matcher{}, fmt.Errorf("query: encode value %d: %w", i, err)
		}
		m.encoded[i] = s
	}
	return m, nil
}

// Describe builds and renders the fragment. Encoding failures are returned,
// never rendered.
func (b *Values) Describe() (string, error) {
	m, err := b.Build()
	if err != nil {
		return "", err
	}
	return m.Describe(), nil
}

func (b *Values) encode(v any) (string, error) {
	if b.enc != nil {
		return b.enc.EncodeValue(v)
	}
	if b.strict && isNumeric(v) {
		return "", codec.MissingConfiguration(natural(v))
	}
	return natural(v), nil
}

// Matcher is a finalized, immutable predicate fragment.
type Matcher struct {
	op      op
	encoded []string
	quote   Quoting
}

// Describe renders the fragment: is null, is not null, = "v" or
// in ("a","b").
func (m Matcher) Describe() string {
	switch m.op {
	case opNull:
		return "is null"
	case opNotNull:
		return "is not null"
	case opEq:
		return "= " + m.quote.Quote(m.encoded[0])
	case opIn:
		return "in (" + strings.Join(internal.Map(m.encoded, m.quote.Quote), ",") + ")"
	default:
		return ""
	}
}

// Encoded returns a copy of the encoded values.
func (m Matcher) Encoded() []string { return append([]string(nil), m.encoded...) }

func (m Matcher) String() string { return m.Describe() }

// natural is the lenient text form of a value with no encoder.
func natural(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case uint64:
		return strconv.FormatUint(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	}
	if n, ok := codec.AsInt64(v); ok {
		return strconv.FormatInt(n, 10)
	}
	return fmt.Sprint(v)
}

func isNumeric(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
