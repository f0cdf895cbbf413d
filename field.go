package bitrec

import (
	"fmt"
	"math"
	"math/big"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/bitrec/errors"
	"github.com/wippyai/bitrec/expr"
)

// Auto marks an open slice bound, like an omitted index in native slice
// notation.
const Auto = math.MinInt

// cell is the storage backing one top-level binding: a single shared
// mutable arbitrary-width unsigned integer. Every field derived from
// the binding aliases it.
type cell struct {
	n big.Int
}

// Field is a live view pairing a layout node with a storage cell.
// Derived fields share the cell: mutation through any view is visible
// through all others, including parent and root views. The runtime
// provides no synchronization; guard concurrent mutation externally.
type Field struct {
	layout *Layout
	cell   *cell
}

// New allocates t and binds it to a fresh zero-valued cell.
func New(t *Type) (*Field, error) {
	l, err := Allocate(t)
	if err != nil {
		return nil, err
	}
	return Bind(l), nil
}

// Bind binds a layout to a fresh zero-valued cell. Layouts can be
// bound any number of times; each binding owns an independent register.
func Bind(l *Layout) *Field {
	return &Field{layout: l, cell: new(cell)}
}

// Must unwraps a (value, error) pair, panicking on error. Intended for
// fields known statically to exist.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func (f *Field) derive(l *Layout) *Field {
	return &Field{layout: l, cell: f.cell}
}

// Layout returns the field's layout node.
func (f *Field) Layout() *Layout { return f.layout }

// Type returns the field's descriptor.
func (f *Field) Type() *Type { return f.layout.typ }

// Name returns the field's dotted path from the root.
func (f *Field) Name() string { return f.layout.name }

// BitSize returns the field's width in bits.
func (f *Field) BitSize() int { return f.layout.typ.Size }

// Offset returns the field's bit offset from the root LSB.
func (f *Field) Offset() int { return f.layout.offset }

// Mask returns a copy of the field's mask.
func (f *Field) Mask() *big.Int { return f.layout.Mask() }

// EnumTable returns the field's enum table, nil if undefined.
func (f *Field) EnumTable() *Enum { return f.layout.typ.Enum }

// Len returns the element count of an indexed composite, 0 otherwise.
func (f *Field) Len() int { return f.layout.typ.Dim }

// Root returns the view over the whole backing register.
func (f *Field) Root() *Field { return f.derive(f.layout.root) }

// Parent returns the enclosing composite view, nil at the root.
func (f *Field) Parent() *Field {
	if f.layout.parent == nil {
		return nil
	}
	return f.derive(f.layout.parent)
}

// Raw returns the field's unsigned bit pattern: (cell >> offset) & mask.
// Slices compose their aliased elements most-significant-first; computed
// fields evaluate their formula (zero on evaluation failure).
func (f *Field) Raw() *big.Int {
	switch f.layout.typ.Kind {
	case KindSlice:
		es := uint(f.layout.typ.Elem.Size)
		n := new(big.Int)
		for _, el := range f.layout.elems {
			n.Lsh(n, es)
			n.Or(n, f.rawAt(el))
		}
		return n
	case KindComputed:
		v, err := f.layout.typ.Formula.Eval(&f.cell.n)
		if err != nil {
			// Raw has no error channel; Get surfaces the same failure.
			logger().Warn("computed field evaluation failed",
				zap.String("field", f.layout.name),
				zap.Error(err))
			return new(big.Int)
		}
		return v
	default:
		return f.rawAt(f.layout)
	}
}

func (f *Field) rawAt(l *Layout) *big.Int {
	n := new(big.Int).Rsh(&f.cell.n, uint(l.offset))
	return n.And(n, l.mask)
}

// SetRaw writes the field's bit pattern, truncating v modulo 2^size:
// cell = cell &^ (mask<<offset) | ((v & mask) << offset).
// Negative values write their two's complement. Computed fields are
// read-only and ignore the write.
func (f *Field) SetRaw(v *big.Int) {
	switch f.layout.typ.Kind {
	case KindSlice:
		es := uint(f.layout.typ.Elem.Size)
		dim := len(f.layout.elems)
		t := getBig()
		for i, el := range f.layout.elems {
			t.Rsh(v, es*uint(dim-1-i))
			f.setRawAt(el, t)
		}
		putBig(t)
	case KindComputed:
		// read-only
	default:
		f.setRawAt(f.layout, v)
	}
}

func (f *Field) setRawAt(l *Layout, v *big.Int) {
	off := uint(l.offset)
	t := getBig()
	m := getBig()
	t.And(v, l.mask)
	t.Lsh(t, off)
	m.Lsh(l.mask, off)
	f.cell.n.AndNot(&f.cell.n, m)
	f.cell.n.Or(&f.cell.n, t)
	putBig(t)
	putBig(m)
}

// Uint64 returns the low 64 bits of the raw value.
func (f *Field) Uint64() uint64 {
	n := f.Raw()
	if n.BitLen() > 64 {
		n.And(n, mask64)
	}
	return n.Uint64()
}

// SetUint64 writes a raw value, truncating modulo 2^size.
func (f *Field) SetUint64(v uint64) {
	f.SetRaw(new(big.Int).SetUint64(v))
}

// Int64 returns the two's-complement reinterpretation of the raw value,
// truncated to 64 bits.
func (f *Field) Int64() int64 {
	n := f.signedRaw()
	if !n.IsInt64() {
		n.And(n, mask64)
	}
	return n.Int64()
}

// SetInt64 writes a signed raw value, truncating modulo 2^size.
func (f *Field) SetInt64(v int64) {
	f.SetRaw(big.NewInt(v))
}

var mask64 = maskBits(64)

// signedRaw returns the raw value reinterpreted as two's complement.
func (f *Field) signedRaw() *big.Int {
	n := f.Raw()
	sz := f.layout.typ.Size
	if sz > 0 && n.Bit(sz-1) == 1 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(sz)))
	}
	return n
}

// asInt returns the field's numeric interpretation: signed for
// sint/fixed, raw for everything else.
func (f *Field) asInt() *big.Int {
	switch f.layout.typ.Kind {
	case KindSInt:
		return f.signedRaw()
	case KindFixed:
		v, _ := f.Float64()
		r, _ := new(big.Float).SetFloat64(math.Trunc(v)).Int(nil)
		return r
	default:
		return f.Raw()
	}
}

// Field returns the named struct child. A key that is not a plain
// identifier is compiled as a field expression over this struct's
// namespace (see ExprField).
func (f *Field) Field(name string) (*Field, error) {
	t := f.layout.typ
	if t.Kind != KindStruct {
		return nil, errors.NotSubscriptable(f.path(), t.Repr())
	}
	if !expr.IsIdentifier(name) {
		return f.ExprField(name)
	}
	c, ok := f.layout.Child(name)
	if !ok {
		return nil, errors.UnknownField(errors.PhaseDecode, f.path(), name)
	}
	return f.derive(c), nil
}

// ExprField compiles src over this struct's field namespace and binds
// the result as a read-only computed field. Compilation is memoized on
// the layout: repeated lookups of the same expression reuse one node.
func (f *Field) ExprField(src string) (*Field, error) {
	l := f.layout
	if l.typ.Kind != KindStruct {
		return nil, errors.NotSubscriptable(f.path(), l.typ.Repr())
	}
	key := "expr:" + src
	if cached, ok := l.memoized(key); ok {
		return f.derive(cached), nil
	}

	resolve := func(name string) (int, *big.Int, error) {
		c, ok := l.Child(name)
		if !ok {
			return 0, nil, errors.UnknownField(errors.PhaseCompile, f.path(), name)
		}
		return c.offset, c.Mask(), nil
	}
	formula, err := expr.Compile(src, resolve, 0)
	if err != nil {
		return nil, err
	}

	cl, err := allocateLayout(Computed(formula), l.name+".<"+src+">", l, 0)
	if err != nil {
		return nil, err
	}
	l.memoize(key, cl)
	return f.derive(cl), nil
}

// Index returns the i-th element of an indexed composite.
func (f *Field) Index(i int) (*Field, error) {
	t := f.layout.typ
	if !t.Kind.IsIndexed() {
		return nil, errors.NotSubscriptable(f.path(), t.Repr())
	}
	if i < 0 || i >= t.Dim {
		return nil, errors.IndexOutOfRange(errors.PhaseDecode, f.path(), i, t.Dim)
	}
	return f.derive(f.layout.elems[i]), nil
}

// Slice returns a view over a range of elements with native slice
// semantics: negative bounds count from the end, the step may be
// negative, and Auto leaves a bound open. Elements are aliased, not
// copied: mutation through the slice mutates the backing array.
func (f *Field) Slice(start, stop, step int) (*Field, error) {
	t := f.layout.typ
	if !t.Kind.IsIndexed() {
		return nil, errors.NotSubscriptable(f.path(), t.Repr())
	}
	key := fmt.Sprintf("slice:%s", boundsKey(start, stop, step))
	if cached, ok := f.layout.memoized(key); ok {
		return f.derive(cached), nil
	}
	indices, err := sliceIndices(start, stop, step, t.Dim)
	if err != nil {
		return nil, err
	}
	st := sliceOf(t, indices)
	name := fmt.Sprintf("%s[%s]", f.layout.name, boundsKey(start, stop, step))
	sl := allocateSlice(st, name, f.layout)
	f.layout.memoize(key, sl)
	return f.derive(sl), nil
}

// Bits returns a view over positions low through high of an integer
// leaf, where positions count from the MSB (position 0 is the leaf's
// most significant bit). The view is high-low+1 bits wide.
func (f *Field) Bits(high, low int) (*Field, error) {
	t := f.layout.typ
	if !t.Kind.IsInteger() {
		return nil, errors.NotSubscriptable(f.path(), t.Repr())
	}
	if low < 0 || high < low || high >= t.Size {
		return nil, errors.IndexOutOfRange(errors.PhaseDecode, f.path(), high, t.Size)
	}
	key := fmt.Sprintf("bits:%d:%d", high, low)
	if cached, ok := f.layout.memoized(key); ok {
		return f.derive(cached), nil
	}
	width := high - low + 1
	offset := f.layout.offset + t.Size - 1 - high
	name := fmt.Sprintf("%s[%d:%d]", f.layout.name, high, low)
	bl, err := allocateLayout(UInt(width), name, f.layout, offset)
	if err != nil {
		return nil, err
	}
	f.layout.memoize(key, bl)
	return f.derive(bl), nil
}

// Names returns a struct's field names in declaration order.
func (f *Field) Names() []string {
	t := f.layout.typ
	names := make([]string, len(t.Fields))
	for i, fd := range t.Fields {
		names[i] = fd.Name
	}
	return names
}

// Elems returns element views of an indexed composite in index order.
func (f *Field) Elems() []*Field {
	out := make([]*Field, len(f.layout.elems))
	for i, el := range f.layout.elems {
		out[i] = f.derive(el)
	}
	return out
}

// Equal compares the field against v: numerically if v is an integer or
// float, against the rendered text if v is a string, elementwise if v
// is a slice or array (lengths must match), by raw value if v is
// another *Field, and by typed value otherwise.
func (f *Field) Equal(v any) bool {
	if n, ok := toBig(v); ok {
		return f.asInt().Cmp(n) == 0
	}

	switch o := v.(type) {
	case float64:
		return f.equalFloat(o)
	case float32:
		return f.equalFloat(float64(o))
	case string:
		return f.String() == o
	case *Field:
		return f.Raw().Cmp(o.Raw()) == 0
	case nil:
		return false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if !f.layout.typ.Kind.IsIndexed() || rv.Len() != f.layout.typ.Dim {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			el := f.derive(f.layout.elems[i])
			if !el.Equal(rv.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Map:
		return f.equalMap(rv)
	}

	got, err := f.Get()
	if err != nil {
		return false
	}
	return reflect.DeepEqual(got, v)
}

func (f *Field) equalFloat(o float64) bool {
	if f.layout.typ.Kind == KindFixed {
		v, err := f.Float64()
		return err == nil && v == o
	}
	fv, _ := new(big.Float).SetInt(f.asInt()).Float64()
	return fv == o
}

func (f *Field) equalMap(rv reflect.Value) bool {
	if f.layout.typ.Kind != KindStruct || rv.Len() != len(f.layout.typ.Fields) {
		return false
	}
	for _, k := range rv.MapKeys() {
		name, ok := k.Interface().(string)
		if !ok {
			return false
		}
		c, ok := f.layout.Child(name)
		if !ok {
			return false
		}
		if !f.derive(c).Equal(rv.MapIndex(k).Interface()) {
			return false
		}
	}
	return true
}

func toBig(v any) (*big.Int, bool) {
	switch o := v.(type) {
	case int:
		return big.NewInt(int64(o)), true
	case int8:
		return big.NewInt(int64(o)), true
	case int16:
		return big.NewInt(int64(o)), true
	case int32:
		return big.NewInt(int64(o)), true
	case int64:
		return big.NewInt(o), true
	case uint:
		return new(big.Int).SetUint64(uint64(o)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(o)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(o)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(o)), true
	case uint64:
		return new(big.Int).SetUint64(o), true
	case *big.Int:
		return o, true
	}
	return nil, false
}

// String renders the typed value as text.
func (f *Field) String() string {
	v, err := f.Get()
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}
	return fmt.Sprintf("%v", v)
}

func (f *Field) path() []string {
	return []string{f.layout.name}
}

func boundsKey(start, stop, step int) string {
	s := func(v int) string {
		if v == Auto {
			return ""
		}
		return fmt.Sprintf("%d", v)
	}
	return s(start) + ":" + s(stop) + ":" + s(step)
}

// sliceIndices normalizes (start, stop, step) against a dimension using
// native slice-indexing semantics and returns the selected indices.
func sliceIndices(start, stop, step, n int) ([]int, error) {
	if step == 0 {
		return nil, errors.Configuration("slice step cannot be zero")
	}

	var lo, hi int
	if step > 0 {
		lo, hi = 0, n
	} else {
		lo, hi = n-1, -1
	}

	clamp := func(v int) int {
		if v < 0 {
			v += n
		}
		if step > 0 {
			if v < 0 {
				return 0
			}
			if v > n {
				return n
			}
		} else {
			if v < -1 {
				return -1
			}
			if v > n-1 {
				return n - 1
			}
		}
		return v
	}

	if start != Auto {
		lo = clamp(start)
	}
	if stop != Auto {
		hi = clamp(stop)
	}

	var idx []int
	if step > 0 {
		for i := lo; i < hi; i += step {
			idx = append(idx, i)
		}
	} else {
		for i := lo; i > hi; i += step {
			idx = append(idx, i)
		}
	}
	return idx, nil
}
