package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojoshi/sdborm/codec"
	"github.com/manojoshi/sdborm/mapping"
)

type Owner struct {
	ID string `sdb:"id,itemname"`
}

type Order struct {
	ID      string    `sdb:"id,itemname"`
	Status  string    `sdb:"status"`
	Qty     int32     `sdb:"qty"`
	Total   float64   `sdb:"total,int=6,frac=2"`
	Placed  time.Time `sdb:"placed"`
	Owner   *Owner    `sdb:"owner"`
	Comment *string   `sdb:"comment"`
}

func orders(t *testing.T) *mapping.Entity {
	t.Helper()
	reg, err := mapping.NewRegistry()
	require.NoError(t, err)
	e, err := reg.Describe(Order{})
	require.NoError(t, err)
	return e
}

func TestAttributes_ReplyShapes(t *testing.T) {
	want := map[string]string{"status": " PAID", "qty": "3000000002"}

	resp2 := []interface{}{"status", " PAID", []byte("qty"), "3000000002"}
	got, err := Attributes(resp2)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	resp3 := map[interface{}]interface{}{"status": " PAID", "qty": []byte("3000000002")}
	got, err = Attributes(resp3)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = Attributes(map[string]interface{}{"status": " PAID", "qty": "3000000002"})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = Attributes(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Attributes([]interface{}{"dangling"})
	assert.Error(t, err)

	_, err = Attributes(42)
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	e := orders(t)
	kv := map[string]string{
		"status":  "PAID",
		"qty":     "3000000002",
		"total":   "100001250",
		"placed":  "2024-05-06T07:08:09.000Z",
		"owner":   "o7",
		"unknown": "ignored",
	}

	o, err := DecodeInto[Order](e, "ord-1", kv)
	require.NoError(t, err)
	assert.Equal(t, "ord-1", o.ID)
	assert.Equal(t, "PAID", o.Status)
	assert.Equal(t, int32(2), o.Qty)
	assert.Equal(t, 12.5, o.Total)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), o.Placed)
	assert.Equal(t, &Owner{ID: "o7"}, o.Owner)
	assert.Nil(t, o.Comment)
}

func TestDecode_RoundTripsEncode(t *testing.T) {
	e := orders(t)
	note := "  leave at door "
	in := Order{
		ID:      "ord-2",
		Status:  "NEW",
		Qty:     -4,
		Total:   -99.99,
		Placed:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Owner:   &Owner{ID: "o1"},
		Comment: &note,
	}
	item, attrs, err := e.Encode(in)
	require.NoError(t, err)

	var out Order
	require.NoError(t, Decode(e, item, attrs, &out))
	assert.Equal(t, in, out)
}

func TestDecode_Errors(t *testing.T) {
	e := orders(t)

	var o Order
	assert.Error(t, Decode(e, "x", nil, o))
	assert.Error(t, Decode(e, "x", nil, (*Order)(nil)))
	assert.Error(t, Decode(e, "x", nil, &Owner{}))

	err := Decode(e, "x", map[string]string{"qty": "5000000000"}, &o)
	assert.ErrorIs(t, err, codec.ErrMagnitudeExceedsTypeMax)
}
