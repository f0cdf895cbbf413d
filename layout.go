package bitrec

import (
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/wippyai/bitrec/errors"
)

// Layout is the realized bit-offset assignment for one descriptor
// instance. Offsets count from the LSB of the ultimate root register.
// Sibling ranges never overlap and exactly tile their composite:
// the first declared struct field (and array index 0) occupies the most
// significant bits, later siblings progressively less significant,
// contiguous ranges.
type Layout struct {
	typ    *Type
	name   string
	offset int
	mask   *big.Int
	parent *Layout
	root   *Layout

	fields map[string]*Layout // struct children by name
	elems  []*Layout          // array/slice/string elements (aliased for slices)
	memo   map[string]*Layout // compiled expression and slice views
}

// Allocate assigns bit ranges to a descriptor tree and returns the root
// Layout.
func Allocate(t *Type) (*Layout, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseAllocate, errors.KindConfiguration).
			Detail("cannot allocate an abstract descriptor").
			Build()
	}
	l, err := allocateLayout(t, t.Name(), nil, 0)
	if err != nil {
		return nil, err
	}
	logger().Debug("allocated layout",
		zap.String("type", t.Name()),
		zap.Int("bits", t.Size))
	return l, nil
}

func newLayout(t *Type, name string, parent *Layout, offset int) *Layout {
	l := &Layout{
		typ:    t,
		name:   name,
		offset: offset,
		mask:   maskBits(t.Size),
		parent: parent,
	}
	if parent != nil {
		l.root = parent.root
	} else {
		l.root = l
	}
	return l
}

func allocateLayout(t *Type, name string, parent *Layout, offset int) (*Layout, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseAllocate, errors.KindConfiguration).
			Path(name).
			Detail("cannot allocate an abstract descriptor").
			Build()
	}

	switch t.Kind {
	case KindUInt, KindSInt, KindFixed:
		if t.Size <= 0 {
			return nil, errors.New(errors.PhaseAllocate, errors.KindConfiguration).
				Path(name).
				Detail("%s has no width", t.Repr()).
				Build()
		}
		return newLayout(t, name, parent, offset), nil

	case KindStruct:
		l := newLayout(t, name, parent, offset)
		l.fields = make(map[string]*Layout, len(t.Fields))
		// Walk declarations in reverse so the last field lands at the
		// composite's base offset and the first at the top.
		z := offset
		for i := len(t.Fields) - 1; i >= 0; i-- {
			f := t.Fields[i]
			child, err := allocateLayout(f.Type, name+"."+f.Name, l, z)
			if err != nil {
				return nil, err
			}
			l.fields[f.Name] = child
			z += f.Type.Size
		}
		return l, nil

	case KindArray, KindString:
		l := newLayout(t, name, parent, offset)
		l.elems = make([]*Layout, t.Dim)
		z := offset
		for i := t.Dim - 1; i >= 0; i-- {
			child, err := allocateLayout(t.Elem, fmt.Sprintf("%s[%d]", name, i), l, z)
			if err != nil {
				return nil, err
			}
			l.elems[i] = child
			z += t.Elem.Size
		}
		return l, nil

	case KindSlice:
		return nil, errors.New(errors.PhaseAllocate, errors.KindConfiguration).
			Path(name).
			Detail("slices allocate through their backing array").
			Build()

	case KindComputed:
		if parent == nil {
			return nil, errors.New(errors.PhaseAllocate, errors.KindConfiguration).
				Path(name).
				Detail("computed fields allocate inside a composite").
				Build()
		}
		return newLayout(t, name, parent, 0), nil

	default:
		return nil, errors.New(errors.PhaseAllocate, errors.KindConfiguration).
			Path(name).
			Detail("cannot allocate an abstract descriptor").
			Build()
	}
}

// allocateSlice wraps already-allocated elements of an array layout.
// Elements are aliased, not copied, so mutation through the slice is
// visible through the array and vice versa.
func allocateSlice(t *Type, name string, arr *Layout) *Layout {
	l := newLayout(t, name, arr, 0)
	l.elems = make([]*Layout, len(t.indices))
	for i, j := range t.indices {
		l.elems[i] = arr.elems[j]
	}
	return l
}

// Type returns the descriptor this layout realizes.
func (l *Layout) Type() *Type { return l.typ }

// Name returns the dotted path of this node from the root.
func (l *Layout) Name() string { return l.name }

// Offset returns the node's bit offset from the root LSB.
func (l *Layout) Offset() int { return l.offset }

// BitSize returns the node's width in bits.
func (l *Layout) BitSize() int { return l.typ.Size }

// Mask returns a copy of the node's mask: BitSize ones.
func (l *Layout) Mask() *big.Int { return new(big.Int).Set(l.mask) }

// Parent returns the enclosing layout, nil at the root.
func (l *Layout) Parent() *Layout { return l.parent }

// Root returns the ultimate root layout.
func (l *Layout) Root() *Layout { return l.root }

// Child returns the named struct child layout.
func (l *Layout) Child(name string) (*Layout, bool) {
	c, ok := l.fields[name]
	return c, ok
}

// Elem returns the i-th element layout of an indexed composite.
func (l *Layout) Elem(i int) (*Layout, bool) {
	if i < 0 || i >= len(l.elems) {
		return nil, false
	}
	return l.elems[i], true
}

func (l *Layout) memoized(key string) (*Layout, bool) {
	c, ok := l.memo[key]
	return c, ok
}

func (l *Layout) memoize(key string, child *Layout) {
	if l.memo == nil {
		l.memo = make(map[string]*Layout)
	}
	l.memo[key] = child
}

func maskBits(size int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(size))
	return m.Sub(m, big.NewInt(1))
}
