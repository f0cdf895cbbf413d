package bitrec

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/wippyai/bitrec/errors"
	"github.com/wippyai/bitrec/expr"
)

// FieldDef is one named child of a struct descriptor. Order is
// significant: the first declared field occupies the most significant
// bits of the struct.
type FieldDef struct {
	Name string
	Type *Type
}

// F is shorthand for a FieldDef.
func F(name string, t *Type) FieldDef {
	return FieldDef{Name: name, Type: t}
}

// Type is a descriptor for a packed binary value. It is pure metadata:
// bit width plus codec rules. Descriptors are built with the
// constructors below and are immutable afterwards.
type Type struct {
	Enum    *Enum         // optional label table (uint/sint)
	Elem    *Type         // element type (array/slice/string)
	Formula *expr.Formula // compiled formula (computed)
	Fields  []FieldDef    // named children (struct), declaration order

	indices []int // aliased element indices into the backing array (slice)

	DeclName  string // optional declared name
	Size      int    // total bit width
	Dim       int    // element count (array/slice/string), 0 otherwise
	Precision int    // fractional digits (fixed)
	Base      int    // digit base (fixed)

	divisor  float64
	min, max float64

	NullTerminated bool // string: truncate decoded text at first zero byte
	Kind           Kind
}

// UInt returns an unsigned integer descriptor of the given bit width.
func UInt(size int) *Type {
	return &Type{Kind: KindUInt, Size: size}
}

// UIntEnum returns an unsigned integer descriptor with an enum table.
func UIntEnum(size int, e *Enum) *Type {
	return &Type{Kind: KindUInt, Size: size, Enum: e}
}

// SInt returns a two's-complement signed integer descriptor.
func SInt(size int) *Type {
	return &Type{Kind: KindSInt, Size: size}
}

// SIntEnum returns a signed integer descriptor with an enum table.
func SIntEnum(size int, e *Enum) *Type {
	return &Type{Kind: KindSInt, Size: size, Enum: e}
}

// Fixed returns a fixed-point descriptor encoded as a signed integer
// with divisor = base^precision. Values outside [Min, Max] are rejected
// at assignment time.
func Fixed(size, precision, base int) *Type {
	t := &Type{
		Kind:      KindFixed,
		Size:      size,
		Precision: precision,
		Base:      base,
		divisor:   math.Pow(float64(base), float64(precision)),
	}
	maxRaw, _ := new(big.Float).SetInt(maskBits(size)).Float64()
	t.max = maxRaw / t.divisor
	t.min = -t.max
	return t
}

// Decimal returns a base-10 fixed-point descriptor.
// Decimal(16, 2) holds two decimal places in 16 bits: -655.35 to 655.35.
func Decimal(size, precision int) *Type {
	return Fixed(size, precision, 10)
}

// NewStruct returns a struct descriptor over an ordered field list.
// The first field occupies the most significant bits. Field names must
// be unique Go identifiers and must not begin or end with an
// underscore (reserved for synthesized element and expression fields).
func NewStruct(name string, fields ...FieldDef) (*Type, error) {
	seen := make(map[string]struct{}, len(fields))
	size := 0
	for _, f := range fields {
		if err := checkFieldName(name, f.Name); err != nil {
			return nil, err
		}
		if _, dup := seen[f.Name]; dup {
			return nil, errors.Configuration("struct %q: duplicate field %q", name, f.Name)
		}
		if f.Type == nil {
			return nil, errors.Configuration("struct %q: field %q has no type", name, f.Name)
		}
		seen[f.Name] = struct{}{}
		size += f.Type.Size
	}
	return &Type{
		Kind:     KindStruct,
		DeclName: name,
		Size:     size,
		Fields:   append([]FieldDef(nil), fields...),
	}, nil
}

// MustStruct is NewStruct that panics on invalid declarations. Intended
// for package-level type definitions.
func MustStruct(name string, fields ...FieldDef) *Type {
	t, err := NewStruct(name, fields...)
	if err != nil {
		panic(err)
	}
	return t
}

func checkFieldName(structName, name string) error {
	if name == "" {
		return errors.Configuration("struct %q: empty field name", structName)
	}
	if strings.HasSuffix(name, "_") || strings.HasPrefix(name, "_") {
		return errors.Configuration("struct %q: field names must not begin or end with _: %q", structName, name)
	}
	if !expr.IsIdentifier(name) {
		return errors.Configuration("struct %q: field name is not an identifier: %q", structName, name)
	}
	return nil
}

// ArrayOf returns an array descriptor of dim elements. Index 0 occupies
// the most significant slot.
func ArrayOf(elem *Type, dim int) *Type {
	return &Type{
		Kind: KindArray,
		Size: elem.Size * dim,
		Elem: elem,
		Dim:  dim,
	}
}

// UTF8 returns a null-terminated fixed-width string descriptor of dim
// bytes.
func UTF8(dim int) *Type {
	return UTF8Raw(dim, true)
}

// UTF8Raw returns a fixed-width string descriptor with explicit
// null-termination behavior.
func UTF8Raw(dim int, nullTerminated bool) *Type {
	return &Type{
		Kind:           KindString,
		Size:           8 * dim,
		Elem:           UInt(8),
		Dim:            dim,
		NullTerminated: nullTerminated,
	}
}

// Computed returns a zero-width read-only descriptor that evaluates a
// compiled formula against the root register. Usually created through
// Field.ExprField rather than directly.
func Computed(f *expr.Formula) *Type {
	return &Type{Kind: KindComputed, Formula: f}
}

func sliceOf(arr *Type, indices []int) *Type {
	return &Type{
		Kind:    KindSlice,
		Size:    arr.Elem.Size * len(indices),
		Elem:    arr.Elem,
		Dim:     len(indices),
		indices: indices,
	}
}

// Divisor returns the fixed-point divisor (base^precision).
func (t *Type) Divisor() float64 { return t.divisor }

// Min returns the smallest encodable fixed-point value.
func (t *Type) Min() float64 { return t.min }

// Max returns the largest encodable fixed-point value.
func (t *Type) Max() float64 { return t.max }

// Name returns the declared name if any, else the canonical repr.
func (t *Type) Name() string {
	if t.DeclName != "" {
		return t.DeclName
	}
	return t.Repr()
}

// Repr returns a canonical description of the descriptor.
func (t *Type) Repr() string {
	switch t.Kind {
	case KindUInt, KindSInt:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Size)
	case KindFixed:
		if t.Base == 10 {
			return fmt.Sprintf("decimal(%d, %d)", t.Size, t.Precision)
		}
		return fmt.Sprintf("fixed(%d, %d, %d)", t.Size, t.Precision, t.Base)
	case KindStruct:
		reprs := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			reprs[i] = fmt.Sprintf("('%s', %s)", f.Name, f.Type.Name())
		}
		return fmt.Sprintf("struct('%s', [%s])", t.DeclName, strings.Join(reprs, ", "))
	case KindArray:
		return fmt.Sprintf("%s[%d]", t.Elem.Name(), t.Dim)
	case KindSlice:
		return fmt.Sprintf("%s[%d elems]", t.Elem.Name(), t.Dim)
	case KindString:
		return fmt.Sprintf("utf8(%d)", t.Dim)
	case KindComputed:
		return fmt.Sprintf("computed(%s)", t.Formula.Source())
	default:
		return "btype"
	}
}
