package query

// ItemNameToken is the store's reserved pseudo-attribute for an item's own
// identifier.
const ItemNameToken = "itemName()"

// Descriptor names the stored attribute a predicate applies to.
type Descriptor interface {
	// Describe returns the quoted form used inside an expression.
	Describe() string
	// Name returns the attribute name.
	Name() string
}

// Variant selects one of the three descriptor forms.
type Variant int

const (
	VariantPlain Variant = iota
	VariantEvery
	VariantIdentity
)

// Attr describes a single-valued attribute: "name".
func Attr(name string) Descriptor { return plain{name: name} }

// Every describes a multi-valued attribute where the predicate must hold
// for every value: every("name").
func Every(name string) Descriptor { return every{plain{name: name}} }

// ItemName is the shared identity descriptor.
var ItemName Descriptor = itemName{}

// DescribeAttribute renders name in the requested variant. The identity
// variant ignores name.
func DescribeAttribute(name string, v Variant) string {
	switch v {
	case VariantEvery:
		return Every(name).Describe()
	case VariantIdentity:
		return ItemName.Describe()
	default:
		return Attr(name).Describe()
	}
}

type plain struct{ name string }

func (p plain) Describe() string { return QuoteName(p.name) }
func (p plain) Name() string     { return p.name }

type every struct{ plain }

func (e every) Describe() string { return "every(" + e.plain.Describe() + ")" }

type itemName struct{}

func (itemName) Describe() string { return ItemNameToken }
func (itemName) Name() string     { return ItemNameToken }
