package bitrec

import (
	"bytes"
	"encoding/json"
	"math/big"

	"github.com/wippyai/bitrec/errors"
)

// RecordEntry is one decoded struct field.
type RecordEntry struct {
	Key   string
	Value any
}

// Record is the decoded value of a struct field: an ordered mapping of
// child name to decoded value, in declaration order.
type Record []RecordEntry

// Get returns the value for a key.
func (r Record) Get(key string) (any, bool) {
	for _, e := range r {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in declaration order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, e := range r {
		keys[i] = e.Key
	}
	return keys
}

// MarshalJSON renders the record as a JSON object preserving
// declaration order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get decodes the field's typed value:
//
//	uint    uint64 (or *big.Int beyond 64 bits); enum label when defined
//	sint    int64 (or *big.Int), two's complement
//	fixed   float64
//	struct  Record, declaration order
//	array   []any, index 0 first
//	utf8    string, truncated at the first zero byte when null-terminated
//	computed  formula result
func (f *Field) Get() (any, error) {
	t := f.layout.typ
	switch t.Kind {
	case KindUInt:
		n := f.Raw()
		if t.Enum != nil && n.IsUint64() {
			if label, ok := t.Enum.Label(n.Uint64()); ok {
				return label, nil
			}
		}
		return unsignedValue(n), nil

	case KindSInt:
		n := f.signedRaw()
		if t.Enum != nil && n.Sign() >= 0 && n.IsUint64() {
			if label, ok := t.Enum.Label(n.Uint64()); ok {
				return label, nil
			}
		}
		return signedValue(n), nil

	case KindFixed:
		return f.Float64()

	case KindStruct:
		rec := make(Record, 0, len(t.Fields))
		for _, fd := range t.Fields {
			c, _ := f.layout.Child(fd.Name)
			v, err := f.derive(c).Get()
			if err != nil {
				return nil, err
			}
			rec = append(rec, RecordEntry{Key: fd.Name, Value: v})
		}
		return rec, nil

	case KindArray, KindSlice:
		out := make([]any, len(f.layout.elems))
		for i, el := range f.layout.elems {
			v, err := f.derive(el).Get()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case KindString:
		b := make([]byte, t.Dim)
		for i, el := range f.layout.elems {
			b[i] = byte(f.rawAt(el).Uint64())
		}
		if t.NullTerminated {
			if i := bytes.IndexByte(b, 0); i >= 0 {
				b = b[:i]
			}
		}
		return string(b), nil

	case KindComputed:
		n, err := t.Formula.Eval(&f.cell.n)
		if err != nil {
			return nil, err
		}
		return signedValue(n), nil
	}

	return nil, errors.Unsupported(errors.PhaseDecode, "cannot decode %s", t.Kind)
}

// Float64 decodes a fixed-point field: signed raw divided by the
// divisor.
func (f *Field) Float64() (float64, error) {
	t := f.layout.typ
	if t.Kind != KindFixed {
		return 0, errors.TypeMismatch(errors.PhaseDecode, f.path(), t.Repr(), "fixed")
	}
	v, _ := new(big.Float).SetInt(f.signedRaw()).Float64()
	return v / t.divisor, nil
}

func unsignedValue(n *big.Int) any {
	if n.IsUint64() {
		return n.Uint64()
	}
	return n
}

func signedValue(n *big.Int) any {
	if n.IsInt64() {
		return n.Int64()
	}
	return n
}
