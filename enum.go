package bitrec

import "sort"

// Enum is a bidirectional label/ordinal table for integer fields.
// Decoding falls back to the raw ordinal when no label is defined.
type Enum struct {
	fwd    map[string]uint64
	rev    map[uint64]string
	labels []string
}

// NewEnum builds an enum from an ordered list of labels; the ordinal of
// each label is its position.
func NewEnum(labels ...string) *Enum {
	e := &Enum{
		fwd:    make(map[string]uint64, len(labels)),
		rev:    make(map[uint64]string, len(labels)),
		labels: append([]string(nil), labels...),
	}
	for i, l := range labels {
		e.fwd[l] = uint64(i)
		e.rev[uint64(i)] = l
	}
	return e
}

// EnumMap builds an enum from an explicit label to ordinal mapping.
// Labels and ordinals must both be unique.
func EnumMap(m map[string]uint64) *Enum {
	e := &Enum{
		fwd: make(map[string]uint64, len(m)),
		rev: make(map[uint64]string, len(m)),
	}
	for l, n := range m {
		e.fwd[l] = n
		e.rev[n] = l
		e.labels = append(e.labels, l)
	}
	sort.Slice(e.labels, func(i, j int) bool { return e.fwd[e.labels[i]] < e.fwd[e.labels[j]] })
	return e
}

// Ordinal returns the ordinal for a label.
func (e *Enum) Ordinal(label string) (uint64, bool) {
	n, ok := e.fwd[label]
	return n, ok
}

// Label returns the label for an ordinal.
func (e *Enum) Label(ordinal uint64) (string, bool) {
	l, ok := e.rev[ordinal]
	return l, ok
}

// Labels returns the labels in ordinal order.
func (e *Enum) Labels() []string {
	return append([]string(nil), e.labels...)
}

// Len returns the number of defined labels.
func (e *Enum) Len() int {
	return len(e.fwd)
}
