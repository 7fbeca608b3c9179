package enums

// MatchKind tags how an order line item was resolved to a local record.
type MatchKind string

const (
	MatchKindSKU  MatchKind = "sku"
	MatchKindName MatchKind = "name"
	MatchKindNone MatchKind = "none"
)

// String implements fmt.Stringer.
func (m MatchKind) String() string {
	return string(m)
}
