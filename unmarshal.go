package bitrec

import (
	"github.com/mitchellh/mapstructure"

	"github.com/wippyai/bitrec/errors"
)

// Unmarshal decodes a field's typed value into out, typically a struct
// pointer. Field names map via the "bitrec" tag, falling back to
// case-insensitive name matching. Numeric conversions are weakly typed
// so decoded uint64 ordinals fit plain int struct fields.
func Unmarshal(f *Field, out any) error {
	v, err := f.Get()
	if err != nil {
		return err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "bitrec",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.New(errors.PhaseDecode, errors.KindConfiguration).
			Path(f.path()...).
			Cause(err).
			Detail("cannot build decoder").
			Build()
	}
	if err := dec.Decode(normalize(v)); err != nil {
		return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			Path(f.path()...).
			Cause(err).
			Detail("cannot unmarshal into %T", out).
			Build()
	}
	return nil
}

// normalize converts Record trees into plain map[string]any so
// mapstructure can traverse them.
func normalize(v any) any {
	switch o := v.(type) {
	case Record:
		m := make(map[string]any, len(o))
		for _, e := range o {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case []any:
		out := make([]any, len(o))
		for i, e := range o {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}
