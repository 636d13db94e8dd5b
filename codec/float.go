package codec

import (
	"math"
	"strconv"
	"strings"
)

const (
	signNegative = '0'
	signPositive = '1'
)

// FloatCodec encodes float64 values with a fixed number of fraction digits.
//
// Layout: one sign digit followed by IntegerDigits+FractionDigits digits of
// the scaled, offset-shifted value. A negative scaled value n is stored as
// 10^W + n so that larger magnitudes sort lower.
type FloatCodec struct {
	cfg     Config
	width   int
	scale   float64
	modulus int64
	shift   int64
}

func NewFloat(cfg Config) (*FloatCodec, error) {
	if cfg.Kind != Float {
		return nil, newError(KindConfigurationRange, "", "float codec needs kind float, got %s", cfg.Kind)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &FloatCodec{
		cfg:     cfg,
		width:   cfg.width(),
		scale:   float64(pow10[int64](cfg.FractionDigits)),
		modulus: pow10[int64](cfg.width()),
		shift:   int64(cfg.Offset) * pow10[int64](cfg.FractionDigits),
	}, nil
}

func (c *FloatCodec) Config() Config { return c.cfg }

func (c *FloatCodec) Encode(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", newError(KindNotANumber, strconv.FormatFloat(v, 'g', -1, 64), "cannot encode")
	}
	r := math.Round(v * c.scale)
	if math.Abs(r) >= float64(c.modulus) {
		return "", newError(KindOffsetRange, format(v), "exceeds %d.%d digits", c.cfg.IntegerDigits, c.cfg.FractionDigits)
	}
	n := int64(r) + c.shift
	if n >= c.modulus || n <= -c.modulus {
		return "", newError(KindOffsetRange, format(v), "shifted value exceeds %d digits", c.width)
	}
	if n >= 0 {
		return string(signPositive) + c.pad(n), nil
	}
	return string(signNegative) + c.pad(c.modulus+n), nil
}

func (c *FloatCodec) Decode(s string) (float64, error) {
	if len(s) != c.width+1 || !isDigits(s[1:]) {
		return 0, newError(KindNotANumber, s, "want sign digit and %d digits", c.width)
	}
	body, err := strconv.ParseInt(s[1:], 10, 64)
	if err != nil {
		return 0, newError(KindNotANumber, s, "%v", err)
	}
	var n int64
	switch s[0] {
	case signPositive:
		n = body
	case signNegative:
		if body == 0 {
			return 0, newError(KindNotANumber, s, "empty negative body")
		}
		n = body - c.modulus
	default:
		return 0, newError(KindNotANumber, s, "unknown sign digit %q", s[0])
	}
	return float64(n-c.shift) / c.scale, nil
}

func (c *FloatCodec) pad(n int64) string {
	s := strconv.FormatInt(n, 10)
	return strings.Repeat("0", c.width-len(s)) + s
}

func format(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
