package bitrec

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/wippyai/bitrec/errors"
)

// Set encodes a typed value into the field's bit range. Plain integer
// fields truncate modulo 2^size without error; fixed-point fields are
// bounds-checked; composites accept either a raw integer (full replace)
// or a structured value (partial update).
func (f *Field) Set(v any) error {
	switch f.layout.typ.Kind {
	case KindUInt, KindSInt:
		return f.setInt(v)
	case KindFixed:
		return f.setFixed(v)
	case KindStruct:
		return f.setStruct(v)
	case KindArray, KindSlice:
		return f.setArray(v)
	case KindString:
		return f.setString(v)
	case KindComputed:
		return errors.Unsupported(errors.PhaseEncode, "computed field %s is read-only", f.layout.name)
	}
	return errors.Unsupported(errors.PhaseEncode, "cannot encode %s", f.layout.typ.Kind)
}

func (f *Field) setInt(v any) error {
	if n, ok := toBig(v); ok {
		f.SetRaw(n)
		return nil
	}
	switch o := v.(type) {
	case string:
		return f.setIntText(o)
	case json.Number:
		return f.setIntText(string(o))
	case float64:
		return f.setIntFloat(o)
	case float32:
		return f.setIntFloat(float64(o))
	case *Field:
		f.SetRaw(o.Raw())
		return nil
	}
	return errors.TypeMismatch(errors.PhaseEncode, f.path(),
		fmt.Sprintf("%T", v), "integer, enum label, or literal text")
}

// setIntText resolves an enum label, falling back to a decimal, hex
// (0x), or binary (0b) literal ordinal.
func (f *Field) setIntText(s string) error {
	t := f.layout.typ
	if t.Enum != nil {
		if ord, ok := t.Enum.Ordinal(s); ok {
			f.SetUint64(ord)
			return nil
		}
	}
	if n, ok := new(big.Int).SetString(strings.TrimSpace(s), 0); ok {
		f.SetRaw(n)
		return nil
	}
	return errors.InvalidEnum(f.path(), s, t.Repr())
}

func (f *Field) setIntFloat(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Trunc(v) != v {
		return errors.TypeMismatch(errors.PhaseEncode, f.path(), "fractional float", "integer")
	}
	n, _ := big.NewFloat(v).Int(nil)
	f.SetRaw(n)
	return nil
}

func (f *Field) setFixed(v any) error {
	t := f.layout.typ
	var val float64
	switch o := v.(type) {
	case float64:
		val = o
	case float32:
		val = float64(o)
	case json.Number:
		parsed, err := o.Float64()
		if err != nil {
			return errors.TypeMismatch(errors.PhaseEncode, f.path(), string(o), "number")
		}
		val = parsed
	default:
		n, ok := toBig(v)
		if !ok {
			return errors.TypeMismatch(errors.PhaseEncode, f.path(),
				fmt.Sprintf("%T", v), "number")
		}
		val, _ = new(big.Float).SetInt(n).Float64()
	}

	if val < t.min || val > t.max {
		return errors.OutOfRange(f.path(), val, t.min, t.max)
	}

	// truncate toward zero, matching integer conversion semantics
	raw, _ := big.NewFloat(val * t.divisor).Int(nil)
	f.SetRaw(raw)
	return nil
}

func (f *Field) setStruct(v any) error {
	if n, ok := toBig(v); ok {
		f.SetRaw(n)
		return nil
	}
	switch o := v.(type) {
	case json.Number:
		return f.setIntJSON(o)
	case Record:
		for _, e := range o {
			if err := f.setNamed(e.Key, e.Value); err != nil {
				return err
			}
		}
		return nil
	case *Field:
		f.SetRaw(o.Raw())
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		for _, k := range rv.MapKeys() {
			if err := f.setNamed(k.String(), rv.MapIndex(k).Interface()); err != nil {
				return err
			}
		}
		return nil
	}

	return errors.TypeMismatch(errors.PhaseEncode, f.path(),
		fmt.Sprintf("%T", v), "mapping or raw integer")
}

func (f *Field) setNamed(name string, v any) error {
	c, ok := f.layout.Child(name)
	if !ok {
		return errors.UnknownField(errors.PhaseEncode, f.path(), name)
	}
	return f.derive(c).Set(v)
}

func (f *Field) setArray(v any) error {
	if n, ok := toBig(v); ok {
		f.SetRaw(n)
		return nil
	}
	switch o := v.(type) {
	case json.Number:
		return f.setIntJSON(o)
	case *Field:
		f.SetRaw(o.Raw())
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		dim := f.layout.typ.Dim
		if rv.Len() > dim {
			return errors.IndexOutOfRange(errors.PhaseEncode, f.path(), rv.Len()-1, dim)
		}
		// elements beyond the assigned prefix are left unchanged
		for i := 0; i < rv.Len(); i++ {
			if err := f.derive(f.layout.elems[i]).Set(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}

	return errors.TypeMismatch(errors.PhaseEncode, f.path(),
		fmt.Sprintf("%T", v), "iterable or raw integer")
}

func (f *Field) setString(v any) error {
	t := f.layout.typ
	var b []byte
	switch o := v.(type) {
	case string:
		b = []byte(o)
	case []byte:
		b = o
	case json.Number:
		return f.setIntJSON(o)
	default:
		if n, ok := toBig(v); ok {
			f.SetRaw(n)
			return nil
		}
		return errors.TypeMismatch(errors.PhaseEncode, f.path(),
			fmt.Sprintf("%T", v), "string, bytes, or raw integer")
	}

	// right-pad with zero bytes to exactly dim, truncate if longer
	if len(b) > t.Dim {
		b = b[:t.Dim]
	}
	scratch := getBig()
	for i := 0; i < t.Dim; i++ {
		var c byte
		if i < len(b) {
			c = b[i]
		}
		scratch.SetUint64(uint64(c))
		f.setRawAt(f.layout.elems[i], scratch)
	}
	putBig(scratch)
	return nil
}

func (f *Field) setIntJSON(o json.Number) error {
	if n, ok := new(big.Int).SetString(string(o), 10); ok {
		f.SetRaw(n)
		return nil
	}
	return errors.TypeMismatch(errors.PhaseEncode, f.path(), string(o), "integer")
}
