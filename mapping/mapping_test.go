package mapping

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/manojoshi/sdborm/codec"
	q "github.com/manojoshi/sdborm/query"
)

type Status int

const (
	Pending Status = iota
	Shipped
	Cancelled
)

func (Status) Members() []string { return []string{"pending", "shipped", "cancelled"} }

type Color string

func (Color) Members() []string { return []string{"red", "green", "blue"} }

type Team struct {
	ID   string `sdb:"id,itemname"`
	Name string `sdb:"name"`
}

type User struct {
	ID      string    `sdb:"id,itemname"`
	Name    string    `sdb:"name"`
	Age     int32     `sdb:"age"`
	Visits  int64     `sdb:"visits"`
	Score   *int      `sdb:"score,pad=4,offset=1000"`
	Balance float64   `sdb:"balance,int=9,frac=2"`
	Joined  time.Time `sdb:"joined"`
	Status  Status    `sdb:"status,ordinal"`
	Color   Color     `sdb:"color"`
	Team    *Team     `sdb:"team"`
	Tags    string    `sdb:"tags,every"`
	Active  bool      `sdb:"active"`
	Secret  string
	Ignored string `sdb:"-"`
}

type Ledger struct {
	Key string `sdb:",itemname"`
}

func (Ledger) Domain() string { return "ledgers_v2" }

func newRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r, err := NewRegistry(opts...)
	require.NoError(t, err)
	return r
}

func sampleUser() User {
	return User{
		ID:      "u1",
		Name:    "Ann",
		Age:     30,
		Visits:  5,
		Balance: 12.5,
		Joined:  time.Date(2024, 3, 1, 13, 0, 0, 0, time.FixedZone("CET", 3600)),
		Status:  Shipped,
		Color:   "green",
		Team:    &Team{ID: "t1", Name: "core"},
		Tags:    "a",
		Active:  true,
		Secret:  "not stored",
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		v    any
		want ValueKind
	}{
		{time.Time{}, Date},
		{&time.Time{}, Date},
		{Pending, Enum},
		{Color(""), Enum},
		{int8(0), Int32},
		{int16(0), Int32},
		{int32(0), Int32},
		{0, Int64},
		{int64(0), Int64},
		{uint32(0), Int64},
		{float32(0), Float},
		{0.0, Float},
		{"", PassThrough},
		{true, PassThrough},
		{uint(0), Int64},
		{uint64(0), Int64},
		{uintptr(0), Int64},
		{[]byte(nil), PassThrough},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(reflect.TypeOf(tt.v)), "%T", tt.v)
	}
}

func TestSelectAccess(t *testing.T) {
	assert.Equal(t, ForwardReference, SelectAccess(reflect.TypeOf(&Team{}), reflect.String))
	assert.Equal(t, ForwardReference, SelectAccess(reflect.TypeOf(Team{}), reflect.String))
	assert.Equal(t, PropertyPath, SelectAccess(reflect.TypeOf(&Team{}), reflect.Struct))
	assert.Equal(t, PropertyPath, SelectAccess(reflect.TypeOf(time.Time{}), reflect.String))
	assert.Equal(t, PropertyPath, SelectAccess(reflect.TypeOf(struct{ X int }{}), reflect.String))
	assert.Equal(t, PropertyPath, SelectAccess(reflect.TypeOf(""), reflect.String))
}

func TestDescribe_Metadata(t *testing.T) {
	r := newRegistry(t)
	e, err := r.Describe(&User{})
	require.NoError(t, err)

	assert.Equal(t, "user", e.Domain)
	assert.Equal(t, "ID", e.ItemName.Field)
	assert.Equal(t,
		[]string{"active", "age", "balance", "color", "joined", "name", "score", "status", "tags", "team", "visits"},
		e.Names())

	kinds := map[string]ValueKind{
		"name": PassThrough, "age": Int32, "visits": Int64, "score": Int64, "balance": Float,
		"joined": Date, "status": Enum, "color": Enum, "team": PassThrough, "active": PassThrough,
	}
	for name, want := range kinds {
		assert.Equal(t, want, e.Attr(name).Kind, name)
	}
	assert.Equal(t, ForwardReference, e.Attr("team").Access)
	assert.Equal(t, PropertyPath, e.Attr("age").Access)

	byField, ok := e.Attribute("Balance")
	require.True(t, ok)
	assert.Same(t, e.Attr("balance"), byField)

	again, err := r.Describe(User{})
	require.NoError(t, err)
	assert.Same(t, e, again)
}

func TestDescribe_DomainOverride(t *testing.T) {
	e, err := newRegistry(t).Describe(Ledger{})
	require.NoError(t, err)
	assert.Equal(t, "ledgers_v2", e.Domain)
	assert.Equal(t, "key", e.ItemName.Name)
	assert.Equal(t, "order_line", snake("OrderLine"))
}

func TestEntity_Encode(t *testing.T) {
	e, err := newRegistry(t).Describe(User{})
	require.NoError(t, err)

	item, attrs, err := e.Encode(sampleUser())
	require.NoError(t, err)
	assert.Equal(t, "u1", item)
	assert.Equal(t, map[string]string{
		"name":    "Ann",
		"age":     "3000000030",
		"visits":  "09223372036854775813",
		"balance": "100000001250",
		"joined":  "2024-03-01T12:00:00.000Z",
		"status":  "1",
		"color":   "green",
		"team":    "t1",
		"tags":    "a",
		"active":  "true",
	}, attrs)

	score := 7
	u := sampleUser()
	u.Score = &score
	_, attrs, err = e.Encode(&u)
	require.NoError(t, err)
	assert.Equal(t, "1007", attrs["score"])
}

func TestEntity_EncodeErrors(t *testing.T) {
	e, err := newRegistry(t).Describe(User{})
	require.NoError(t, err)

	u := sampleUser()
	u.ID = ""
	_, _, err = e.Encode(u)
	assert.Error(t, err)

	_, _, err = e.Encode(Team{ID: "t"})
	assert.Error(t, err)

	u = sampleUser()
	u.Status = Status(9)
	_, _, err = e.Encode(u)
	assert.Error(t, err)

	u = sampleUser()
	big := 99_999
	u.Score = &big
	_, _, err = e.Encode(u)
	assert.ErrorIs(t, err, codec.ErrOffsetRange)
}

func TestAttribute_AssignRoundTrip(t *testing.T) {
	e, err := newRegistry(t).Describe(User{})
	require.NoError(t, err)

	score := -12
	in := sampleUser()
	in.Score = &score
	_, attrs, err := e.Encode(in)
	require.NoError(t, err)

	var out User
	rv := reflect.ValueOf(&out).Elem()
	for name, s := range attrs {
		require.NoError(t, e.Attr(name).Assign(rv, s), name)
	}

	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Age, out.Age)
	assert.Equal(t, in.Visits, out.Visits)
	require.NotNil(t, out.Score)
	assert.Equal(t, -12, *out.Score)
	assert.Equal(t, in.Balance, out.Balance)
	assert.True(t, in.Joined.Equal(out.Joined))
	assert.Equal(t, time.UTC, out.Joined.Location())
	assert.Equal(t, Shipped, out.Status)
	assert.Equal(t, Color("green"), out.Color)
	assert.Equal(t, &Team{ID: "t1"}, out.Team)
	assert.Equal(t, in.Tags, out.Tags)
	assert.True(t, out.Active)
	assert.Empty(t, out.Secret)
}

func TestAttribute_AssignErrors(t *testing.T) {
	type Small struct {
		ID string `sdb:"id,itemname"`
		N  int8   `sdb:"n"`
		C  Color  `sdb:"c"`
	}
	e, err := newRegistry(t).Describe(Small{})
	require.NoError(t, err)

	var out Small
	rv := reflect.ValueOf(&out).Elem()
	assert.ErrorIs(t, e.Attr("n").Assign(rv, "3000000200"), codec.ErrMagnitudeExceedsTypeMax)
	assert.ErrorIs(t, e.Attr("n").Assign(rv, "abc"), codec.ErrNotANumber)
	assert.Error(t, e.Attr("c").Assign(rv, "purple"))
	require.NoError(t, e.Attr("c").Assign(rv, "blue"))
	assert.Equal(t, Color("blue"), out.C)
}

func TestEnumConverter_EveryMemberRoundTrips(t *testing.T) {
	for _, ordinal := range []bool{false, true} {
		c, err := newEnumConverter(reflect.TypeOf(Pending), ordinal)
		require.NoError(t, err)
		for _, s := range []Status{Pending, Shipped, Cancelled} {
			enc, err := c.EncodeValue(s)
			require.NoError(t, err)
			dec, err := c.DecodeValue(enc)
			require.NoError(t, err)
			assert.Equal(t, s, dec)
		}
	}
}

func TestAttribute_Predicates(t *testing.T) {
	e, err := newRegistry(t).Describe(User{})
	require.NoError(t, err)

	ages, err := e.Attr("age").In(30, 31)
	require.NoError(t, err)
	assert.Equal(t, `"age" in ("3000000030","3000000031")`, q.Compile(ages))

	tags, err := e.Attr("tags").Eq("blue")
	require.NoError(t, err)
	assert.Equal(t, `every("tags") = "blue"`, q.Compile(tags))

	id, err := e.Attr("id").Eq("u1")
	require.NoError(t, err)
	assert.Equal(t, `itemName() = "u1"`, q.Compile(id))

	rich, err := e.Attr("balance").Cmp(q.OpGt, -1.0)
	require.NoError(t, err)
	assert.Equal(t, `"balance" > "099999999900"`, q.Compile(rich))

	team, err := e.Attr("team").Eq(&Team{ID: "t9"})
	require.NoError(t, err)
	assert.Equal(t, `"team" = "t9"`, q.Compile(team))

	span, err := e.Attr("visits").Between(0, 9)
	require.NoError(t, err)
	assert.Equal(t, `"visits" between "09223372036854775808" and "09223372036854775817"`, q.Compile(span))

	assert.Equal(t, `"score" is null`, q.Compile(e.Attr("score").IsNull()))
	assert.Equal(t, `"score" is not null`, q.Compile(e.Attr("score").IsNotNull()))

	_, err = e.Attr("age").Eq(int64(1) << 40)
	assert.ErrorIs(t, err, codec.ErrOffsetRange)
}

func TestMustBuild(t *testing.T) {
	assert.Equal(t, "is null", mustBuild(q.IsNull()).Describe())
	assert.Equal(t, "is not null", mustBuild(q.IsNotNull()).Describe())
	assert.Panics(t, func() { mustBuild(q.In()) })
}

func TestAttribute_UnsignedFields(t *testing.T) {
	type Counter struct {
		ID   string `sdb:"id,itemname"`
		Hits uint64 `sdb:"hits"`
		Size uint   `sdb:"size"`
	}
	e, err := newRegistry(t).Describe(Counter{})
	require.NoError(t, err)
	assert.Equal(t, Int64, e.Attr("hits").Kind)

	_, _, err = e.Encode(Counter{ID: "c", Hits: 1 << 63})
	assert.ErrorIs(t, err, codec.ErrOffsetRange)

	in := Counter{ID: "c", Hits: 9, Size: 10}
	_, attrs, err := e.Encode(in)
	require.NoError(t, err)
	assert.Equal(t, "09223372036854775817", attrs["hits"])
	assert.Less(t, attrs["hits"], attrs["size"])

	var out Counter
	rv := reflect.ValueOf(&out).Elem()
	for name, s := range attrs {
		require.NoError(t, e.Attr(name).Assign(rv, s), name)
	}
	assert.Equal(t, in.Hits, out.Hits)
	assert.Equal(t, in.Size, out.Size)

	// negative stored values do not fit an unsigned field
	assert.ErrorIs(t, e.Attr("hits").Assign(rv, "09223372036854775807"), codec.ErrMagnitudeExceedsTypeMax)
}

func TestDescribe_Errors(t *testing.T) {
	type NoID struct {
		Name string `sdb:"name"`
	}
	type TwoIDs struct {
		A string `sdb:"a,itemname"`
		B string `sdb:"b,itemname"`
	}
	type BadOpt struct {
		ID string `sdb:"id,itemname"`
		N  int    `sdb:"n,wat"`
	}
	type BadPad struct {
		ID string `sdb:"id,itemname"`
		N  int32  `sdb:"n,pad=3"`
	}
	type BadType struct {
		ID string         `sdb:"id,itemname"`
		M  map[string]int `sdb:"m"`
	}
	type Embedded struct {
		ID string          `sdb:"id,itemname"`
		S  struct{ X int } `sdb:"s"`
	}
	type Dup struct {
		ID string `sdb:"id,itemname"`
		A  string `sdb:"x"`
		B  string `sdb:"x"`
	}

	r := newRegistry(t)
	for _, model := range []any{NoID{}, TwoIDs{}, BadOpt{}, BadPad{}, BadType{}, Embedded{}, Dup{}, 42, nil} {
		_, err := r.Describe(model)
		assert.Error(t, err, "%T", model)
	}

	_, err := r.Describe(BadPad{})
	assert.ErrorIs(t, err, codec.ErrConfigurationRange)
}

func TestNewRegistry_Options(t *testing.T) {
	_, err := NewRegistry(WithInt32(codec.Config{Kind: codec.Int64}))
	assert.ErrorIs(t, err, codec.ErrConfigurationRange)

	_, err = NewRegistry(WithFloat(codec.Config{Kind: codec.Float, IntegerDigits: 20}))
	assert.ErrorIs(t, err, codec.ErrConfigurationRange)

	r := newRegistry(t,
		WithInt32(codec.Config{Kind: codec.Int32, Padding: 12, Offset: codec.Int32Offset}),
		WithDateLayout("2006-01-02"),
	)
	type Row struct {
		ID  string    `sdb:"id,itemname"`
		N   int32     `sdb:"n"`
		Day time.Time `sdb:"day"`
	}
	e, err := r.Describe(Row{})
	require.NoError(t, err)
	_, attrs, err := e.Encode(Row{ID: "r", N: 1, Day: time.Date(2020, 1, 2, 23, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, "003000000001", attrs["n"])
	assert.Equal(t, "2020-01-02", attrs["day"])
}

func TestRegistry_LogsConverterSelection(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newRegistry(t, WithLogger(zap.New(core)))

	_, err := r.Describe(Team{})
	require.NoError(t, err)

	entries := logs.FilterMessage("converter selected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "name", entries[0].ContextMap()["attribute"])
	assert.Equal(t, "passthrough", entries[0].ContextMap()["kind"])
}
