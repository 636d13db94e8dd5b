package codec

import (
	"math"
	"strconv"
	"strings"
)

// IntCodec encodes int32 or int64 values, depending on the Kind of its Config.
type IntCodec struct {
	cfg      Config
	min, max int64
	width    int
}

func NewInt(cfg Config) (*IntCodec, error) {
	if cfg.Kind != Int32 && cfg.Kind != Int64 {
		return nil, newError(KindConfigurationRange, "", "integer codec needs int32 or int64, got %s", cfg.Kind)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &IntCodec{cfg: cfg, min: math.MinInt64, max: math.MaxInt64}
	if cfg.Kind == Int32 {
		c.min, c.max = math.MinInt32, math.MaxInt32
	}
	c.width = cfg.Padding
	if c.width == 0 {
		c.width = autoWidth(cfg.Offset, uint64(c.max))
	}
	return c, nil
}

// autoWidth is the digit count of the largest shifted value.
func autoWidth(off, top uint64) int {
	if top > math.MaxUint64-off {
		return maxUintDigits
	}
	return len(strconv.FormatUint(off+top, 10))
}

func (c *IntCodec) Config() Config { return c.cfg }

// Width is the length of every encoding.
func (c *IntCodec) Width() int { return c.width }

// Encode shifts v by the offset and zero-pads it to the codec's width.
func (c *IntCodec) Encode(v int64) (string, error) {
	if v < c.min || v > c.max {
		return "", newError(KindOffsetRange, strconv.FormatInt(v, 10), "outside %s range", c.cfg.Kind)
	}
	off := c.cfg.Offset
	var shifted uint64
	if v >= 0 {
		u := uint64(v)
		if u > math.MaxUint64-off {
			return "", newError(KindOffsetRange, strconv.FormatInt(v, 10), "offset %d overflows uint64", off)
		}
		shifted = off + u
	} else {
		m := magnitude(v)
		if m > off {
			return "", newError(KindOffsetRange, strconv.FormatInt(v, 10), "offset %d too small for negative value", off)
		}
		shifted = off - m
	}

	s := strconv.FormatUint(shifted, 10)
	if len(s) > c.width {
		return "", newError(KindOffsetRange, strconv.FormatInt(v, 10), "shifted value %s exceeds %d digits", s, c.width)
	}
	return strings.Repeat("0", c.width-len(s)) + s, nil
}

// Decode parses a digit string produced by Encode and removes the offset.
func (c *IntCodec) Decode(s string) (int64, error) {
	if !isDigits(s) {
		return 0, newError(KindNotANumber, s, "not a digit string")
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, newError(KindMagnitudeExceedsTypeMax, s, "exceeds uint64")
	}
	off := c.cfg.Offset
	if u >= off {
		d := u - off
		if d > uint64(c.max) {
			return 0, newError(KindMagnitudeExceedsTypeMax, s, "decoded value exceeds %s max", c.cfg.Kind)
		}
		return int64(d), nil
	}
	m := off - u
	if m > magnitude(c.min) {
		return 0, newError(KindMagnitudeExceedsTypeMax, s, "decoded value below %s min", c.cfg.Kind)
	}
	return -int64(m-1) - 1, nil
}

// magnitude returns |v| for negative v without overflowing on MinInt64.
func magnitude(v int64) uint64 {
	return uint64(-(v + 1)) + 1
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
