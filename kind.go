package bitrec

// Kind identifies a descriptor's codec.
type Kind uint8

const (
	KindUInt Kind = iota
	KindSInt
	KindFixed
	KindStruct
	KindArray
	KindSlice
	KindString
	KindComputed
)

var kindNames = [...]string{
	KindUInt:     "uint",
	KindSInt:     "sint",
	KindFixed:    "fixed",
	KindStruct:   "struct",
	KindArray:    "array",
	KindSlice:    "slice",
	KindString:   "utf8",
	KindComputed: "computed",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsInteger reports whether the kind stores a plain (modular) integer.
func (k Kind) IsInteger() bool {
	return k == KindUInt || k == KindSInt
}

// IsComposite reports whether the kind has addressable children.
func (k Kind) IsComposite() bool {
	switch k {
	case KindStruct, KindArray, KindSlice, KindString:
		return true
	default:
		return false
	}
}

// IsIndexed reports whether the kind has a fixed dimension and supports
// integer indexing and slicing.
func (k Kind) IsIndexed() bool {
	switch k {
	case KindArray, KindSlice, KindString:
		return true
	default:
		return false
	}
}
