// Package sqltype defines the logical SQL type tags used to address encoders,
// decoders and wire metadata independently of any Go value type.
//
// Tags are zero-size structs. They only exist at the type level: a binding is
// declared for a tag, and a nullable column is expressed by wrapping the tag
// in Nullable.
package sqltype

// Kind identifies the SQL semantic of a logical type.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindSmallInt
	KindInteger
	KindBigInt
	KindFloat
	KindDouble
	KindNumeric
	KindText
	KindBinary
	KindDate
	KindTimestamp
	KindUUID
	KindJSON
	KindOid
)

var kindNames = map[Kind]string{
	KindBool:      "Bool",
	KindSmallInt:  "SmallInt",
	KindInteger:   "Integer",
	KindBigInt:    "BigInt",
	KindFloat:     "Float",
	KindDouble:    "Double",
	KindNumeric:   "Numeric",
	KindText:      "Text",
	KindBinary:    "Binary",
	KindDate:      "Date",
	KindTimestamp: "Timestamp",
	KindUUID:      "Uuid",
	KindJSON:      "Json",
	KindOid:       "Oid",
}

// String returns the SQL type name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := KindBool; k <= KindOid; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Type is implemented by every logical type tag.
type Type interface {
	// Kind returns the SQL semantic of the tag.
	Kind() Kind

	// Nullable reports whether the tag admits SQL NULL.
	Nullable() bool
}

// NotNull marks tags that reject SQL NULL. Only NotNull tags can be wrapped in
// Nullable, so nesting Nullable is a compile error.
type NotNull interface {
	Type
	notNull()
}

type notNullTag struct{}

func (notNullTag) Nullable() bool { return false }
func (notNullTag) notNull()       {}

// Nullable wraps a not-null tag to denote a column that may be absent.
type Nullable[L NotNull] struct{}

// Kind returns the kind of the wrapped tag.
func (Nullable[L]) Kind() Kind {
	var inner L
	return inner.Kind()
}

// Nullable always reports true.
func (Nullable[L]) Nullable() bool { return true }

// Inner returns the wrapped tag.
func (Nullable[L]) Inner() L {
	var inner L
	return inner
}

// Name returns the display name of t, e.g. "Integer" or "Nullable<Integer>".
func Name(t Type) string {
	if t.Nullable() {
		return "Nullable<" + t.Kind().String() + ">"
	}
	return t.Kind().String()
}

// Of returns the zero value of the tag L as a Type.
func Of[L Type]() Type {
	var t L
	return t
}
