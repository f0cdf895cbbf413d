package bitrec

import (
	"encoding/json"
	"math/big"
	"regexp"
	"strings"

	"github.com/wippyai/bitrec/errors"
)

// Common C-family literal suffixes (U, L, UL, LL, ULL, trailing H for
// hex) are tolerated on input and never produced on output.
var (
	hexPattern = regexp.MustCompile(`^\s*(?:0[xX])?([0-9a-fA-F]+)(?:[Uu]?[Ll]{1,2}|[Hh])?\s*$`)
	binPattern = regexp.MustCompile(`^\s*(?:0[bB])?([01]+)(?:[Uu]?[Ll]{1,2})?\s*$`)
)

// Hex renders the raw value as lowercase hex, zero-padded to the
// field's full width, without a 0x prefix.
func (f *Field) Hex() string {
	return padLeft(f.Raw().Text(16), (f.BitSize()+3)/4)
}

// SetHex parses a hex string into the raw value. A 0x prefix and
// literal suffixes are accepted; surrounding whitespace is ignored.
func (f *Field) SetHex(s string) error {
	m := hexPattern.FindStringSubmatch(s)
	if m == nil {
		return errors.BadFormat(f.path(), "hex string", s)
	}
	n, _ := new(big.Int).SetString(m[1], 16)
	f.SetRaw(n)
	return nil
}

// Bin renders the raw value as binary digits, zero-padded to the
// field's full width, without a 0b prefix.
func (f *Field) Bin() string {
	return padLeft(f.Raw().Text(2), f.BitSize())
}

// SetBin parses a binary string into the raw value. A 0b prefix and
// literal suffixes are accepted; surrounding whitespace is ignored.
func (f *Field) SetBin(s string) error {
	m := binPattern.FindStringSubmatch(s)
	if m == nil {
		return errors.BadFormat(f.path(), "binary string", s)
	}
	n, _ := new(big.Int).SetString(m[1], 2)
	f.SetRaw(n)
	return nil
}

// JSON encodes the field's typed value as JSON. Struct fields render
// as objects in declaration order.
func (f *Field) JSON() (string, error) {
	v, err := f.Get()
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.New(errors.PhaseDecode, errors.KindFormat).
			Path(f.path()...).
			Cause(err).
			Detail("cannot encode value as JSON").
			Build()
	}
	return string(b), nil
}

// SetJSON decodes a JSON document and assigns it as the field's typed
// value. Numbers are kept as json.Number so large ordinals survive.
func (f *Field) SetJSON(s string) error {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return errors.New(errors.PhaseEncode, errors.KindFormat).
			Path(f.path()...).
			Value(s).
			Cause(err).
			Detail("invalid JSON").
			Build()
	}
	return f.Set(v)
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
