// Package codec encodes signed numbers into strings whose byte-wise order
// equals numeric order, for stores that only compare strings.
//
//	c, _ := codec.NewInt(codec.DefaultInt32())
//	s, _ := c.Encode(-1) // "2999999999"
//	v, _ := c.Decode(s)  // -1
//
// Integers are shifted by a non-negative offset and zero-padded to a fixed
// width. Floats are scaled to a fixed number of fraction digits and carry a
// sign digit; negative bodies are stored as ten's complement so that larger
// magnitudes sort lower.
package codec

import (
	"strconv"

	"golang.org/x/exp/constraints"
)

type Kind int

const (
	Int32 Kind = iota + 1
	Int64
	Float
)

func (k Kind) String() string {
	switch k {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float:
		return "float"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "int32":
		return Int32, true
	case "int64":
		return Int64, true
	case "float":
		return Float, true
	}
	return 0, false
}

const (
	// Int32Offset shifts the whole int32 range above zero.
	Int32Offset uint64 = 3_000_000_000
	// Int64Offset is 2^63; shifted int64 values span all of uint64.
	Int64Offset uint64 = 1 << 63

	maxUintDigits  = 20 // len("18446744073709551615")
	maxFloatDigits = 18 // 10^18 still fits in int64
)

// Config is the per-attribute codec configuration. It is a plain value and
// safe to share.
type Config struct {
	Kind Kind

	// Padding is the fixed width of an integer encoding. Zero picks the
	// digit count of offset plus the kind's maximum.
	Padding int
	// Offset is added before encoding. For Float it applies to the integer
	// part.
	Offset uint64

	// IntegerDigits and FractionDigits bound a Float encoding.
	IntegerDigits  int
	FractionDigits int
}

func DefaultInt32() Config { return Config{Kind: Int32, Padding: 10, Offset: Int32Offset} }

func DefaultInt64() Config { return Config{Kind: Int64, Padding: maxUintDigits, Offset: Int64Offset} }

func DefaultFloat() Config { return Config{Kind: Float, IntegerDigits: 10, FractionDigits: 6} }

// Validate reports configuration-time defects. Whether a particular value
// fits is only known at encode time and is reported as an offset range error.
func (c Config) Validate() error {
	switch c.Kind {
	case Int32, Int64:
		if c.Padding < 0 || c.Padding > maxUintDigits {
			return newError(KindConfigurationRange, "", "%s padding %d outside [0,%d]", c.Kind, c.Padding, maxUintDigits)
		}
		if c.Padding > 0 {
			if n := len(strconv.FormatUint(c.Offset, 10)); n > c.Padding {
				return newError(KindConfigurationRange, "", "offset %d needs %d digits, padding is %d", c.Offset, n, c.Padding)
			}
		}
		return nil
	case Float:
		if c.IntegerDigits < 0 || c.FractionDigits < 0 {
			return newError(KindConfigurationRange, "", "negative digit budget")
		}
		w := c.width()
		if w < 1 || w > maxFloatDigits {
			return newError(KindConfigurationRange, "", "float width %d outside [1,%d]", w, maxFloatDigits)
		}
		if c.Offset >= pow10[uint64](c.IntegerDigits) {
			return newError(KindConfigurationRange, "", "offset %d exceeds %d integer digits", c.Offset, c.IntegerDigits)
		}
		return nil
	default:
		return newError(KindConfigurationRange, "", "unknown codec kind %s", c.Kind)
	}
}

func (c Config) width() int { return c.IntegerDigits + c.FractionDigits }

func pow10[T constraints.Integer](n int) T {
	var p T = 1
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
