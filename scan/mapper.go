// Package scan turns raw attribute replies back into mapped structs.
package scan

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/manojoshi/sdborm/mapping"
)

// Decode fills out, a pointer to e's struct type, from the stored
// attributes of one item. Attributes the entity does not map are ignored,
// and fields without a stored attribute keep their zero value.
func Decode(e *mapping.Entity, item string, kv map[string]string, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("scan: decode target must be a non-nil pointer, got %T", out)
	}
	rv = rv.Elem()
	if rv.Type() != e.Type {
		return fmt.Errorf("scan: entity %s cannot decode into %s", e.Type, rv.Type())
	}
	if err := e.ItemName.Assign(rv, item); err != nil {
		return err
	}
	for _, a := range e.Attributes {
		s, ok := kv[a.Name]
		if !ok {
			continue
		}
		if err := a.Assign(rv, s); err != nil {
			return err
		}
	}
	return nil
}

// DecodeInto is Decode returning a fresh T.
func DecodeInto[T any](e *mapping.Entity, item string, kv map[string]string) (T, error) {
	var out T
	err := Decode(e, item, kv, &out)
	return out, err
}

/*───────────────────────────────
|  Reply normalisation           |
└───────────────────────────────*/

// Attributes converts an HGETALL-style reply into a string map. It accepts
// the go-redis command types, a RESP2 flat key/value list and a RESP3 map.
// Values are kept verbatim: padding and surrounding spaces are significant.
func Attributes(raw any) (map[string]string, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]string{}, nil
	case *redis.MapStringStringCmd:
		return v.Result()
	case *redis.Cmd:
		res, err := v.Result()
		if err != nil {
			return nil, err
		}
		return Attributes(res)
	case map[string]string:
		return v, nil
	case []interface{}: // RESP-2 KV list
		if len(v)%2 != 0 {
			return nil, fmt.Errorf("scan: odd-length key/value reply (%d elements)", len(v))
		}
		m := make(map[string]string, len(v)/2)
		for i := 0; i+1 < len(v); i += 2 {
			m[toStr(v[i])] = toStr(v[i+1])
		}
		return m, nil
	case map[interface{}]interface{}: // RESP-3
		m := make(map[string]string, len(v))
		for k, val := range v {
			m[toStr(k)] = toStr(val)
		}
		return m, nil
	case map[string]interface{}:
		m := make(map[string]string, len(v))
		for k, val := range v {
			m[k] = toStr(val)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("scan: unsupported reply type %T", raw)
	}
}

/*───────────────────────────────
|  Small util fns                |
└───────────────────────────────*/

func toStr(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
