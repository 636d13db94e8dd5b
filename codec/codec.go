package codec

import (
	"fmt"
	"math"
)

// ValueCodec is the kind-independent face of IntCodec and FloatCodec.
type ValueCodec interface {
	Config() Config
	EncodeValue(v any) (string, error)
	DecodeValue(s string) (any, error)
}

// New builds the codec matching cfg.Kind.
func New(cfg Config) (ValueCodec, error) {
	switch cfg.Kind {
	case Int32, Int64:
		c, err := NewInt(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case Float:
		c, err := NewFloat(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, newError(KindConfigurationRange, "", "unknown codec kind %s", cfg.Kind)
	}
}

// Encode encodes any Go integer or float with the codec described by cfg.
func Encode(v any, cfg Config) (string, error) {
	c, err := New(cfg)
	if err != nil {
		return "", err
	}
	return c.EncodeValue(v)
}

// Decode returns an int32, int64 or float64 according to cfg.Kind.
func Decode(s string, cfg Config) (any, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return c.DecodeValue(s)
}

// EncodeValue accepts any Go integer. Floats are rejected.
func (c *IntCodec) EncodeValue(v any) (string, error) {
	n, ok := AsInt64(v)
	if !ok {
		return "", newError(KindNotANumber, fmt.Sprint(v), "not an integer")
	}
	return c.Encode(n)
}

// DecodeValue returns int32 for an Int32 codec and int64 otherwise.
func (c *IntCodec) DecodeValue(s string) (any, error) {
	n, err := c.Decode(s)
	if err != nil {
		return nil, err
	}
	if c.cfg.Kind == Int32 {
		return int32(n), nil
	}
	return n, nil
}

// EncodeValue accepts any Go integer or float.
func (c *FloatCodec) EncodeValue(v any) (string, error) {
	f, ok := AsFloat64(v)
	if !ok {
		return "", newError(KindNotANumber, fmt.Sprint(v), "not a number")
	}
	return c.Encode(f)
}

func (c *FloatCodec) DecodeValue(s string) (any, error) {
	return c.Decode(s)
}

// AsInt64 widens any signed or unsigned Go integer. Unsigned values above
// MaxInt64 are reported as not convertible.
func AsInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), uint64(t) <= math.MaxInt64
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), t <= math.MaxInt64
	}
	return 0, false
}

func AsFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float32:
		return float64(t), true
	case float64:
		return t, true
	}
	if n, ok := AsInt64(v); ok {
		return float64(n), true
	}
	return 0, false
}
