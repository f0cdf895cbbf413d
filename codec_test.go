package bitrec

import (
	"math/big"
	"testing"

	"github.com/wippyai/bitrec/errors"
)

func parrotType() *Type {
	return MustStruct("parrot",
		F("status", UIntEnum(2, NewEnum("dead", "pining", "resting"))),
		F("plumage_rgb", ArrayOf(UInt(5), 3)),
		F("name", UTF8(10)),
	)
}

func TestGet_StructRecord(t *testing.T) {
	f, err := New(parrotType())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := f.Set(map[string]any{
		"status":      "resting",
		"plumage_rgb": []int{21, 18, 30},
		"name":        "polly",
	}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, err := f.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	rec, ok := v.(Record)
	if !ok {
		t.Fatalf("Get returned %T, want Record", v)
	}
	if keys := rec.Keys(); len(keys) != 3 || keys[0] != "status" || keys[2] != "name" {
		t.Errorf("Keys = %v, want declaration order", keys)
	}
	if s, _ := rec.Get("status"); s != "resting" {
		t.Errorf("status = %v, want resting", s)
	}
	if n, _ := rec.Get("name"); n != "polly" {
		t.Errorf("name = %v, want polly", n)
	}
	rgb, _ := rec.Get("plumage_rgb")
	if vals, ok := rgb.([]any); !ok || len(vals) != 3 || vals[0] != uint64(21) {
		t.Errorf("plumage_rgb = %v", rgb)
	}
}

func TestSet_UnknownKey(t *testing.T) {
	f, _ := New(parrotType())
	err := f.Set(map[string]any{"volume": 11})
	if !errors.IsKind(err, errors.KindUnknownField) {
		t.Errorf("err = %v, want unknown_field", err)
	}
}

func TestSet_PartialUpdate(t *testing.T) {
	f, _ := New(parrotType())
	if err := f.Set(map[string]any{"name": "polly"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := f.Set(map[string]any{"status": "pining"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	// The earlier write survives a partial update.
	name := Must(f.Field("name"))
	if !name.Equal("polly") {
		t.Errorf("name = %s, want polly", name)
	}
}

func TestEnum_Text(t *testing.T) {
	f, _ := New(UIntEnum(2, NewEnum("alpha", "beta", "gamma")))

	if err := f.Set("beta"); err != nil {
		t.Fatalf("Set(beta) failed: %v", err)
	}
	if f.Uint64() != 1 {
		t.Errorf("raw = %d, want 1", f.Uint64())
	}

	// Numeric text falls through to a literal ordinal.
	if err := f.Set("2"); err != nil {
		t.Fatalf("Set(2) failed: %v", err)
	}
	v, _ := f.Get()
	if v != "gamma" {
		t.Errorf("Get = %v, want gamma", v)
	}

	if err := f.Set("0x3"); err != nil {
		t.Fatalf("Set(0x3) failed: %v", err)
	}
	if f.Uint64() != 3 {
		t.Errorf("raw = %d, want 3", f.Uint64())
	}
	// Ordinal 3 has no label, decode falls back to the number.
	v, _ = f.Get()
	if v != uint64(3) {
		t.Errorf("Get = %v (%T), want 3", v, v)
	}

	if err := f.Set("perished"); !errors.IsKind(err, errors.KindInvalidEnum) {
		t.Errorf("bad label: err = %v, want invalid_enum", err)
	}
}

func TestFixed_Codec(t *testing.T) {
	f, _ := New(Decimal(16, 2))

	if err := f.Set(123.45); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := f.Raw().Int64(); got != 12345 {
		t.Errorf("raw = %d, want 12345", got)
	}
	v, err := f.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != 123.45 {
		t.Errorf("Get = %v, want 123.45", v)
	}

	if err := f.Set(-1.25); err != nil {
		t.Fatalf("Set(-1.25) failed: %v", err)
	}
	if v, _ := f.Get(); v != -1.25 {
		t.Errorf("Get = %v, want -1.25", v)
	}

	if err := f.Set(700.0); !errors.IsKind(err, errors.KindRange) {
		t.Errorf("out of range: err = %v, want range", err)
	}
	if err := f.Set(-700.0); !errors.IsKind(err, errors.KindRange) {
		t.Errorf("out of range: err = %v, want range", err)
	}

	// Integers encode through the same range check.
	if err := f.Set(100); err != nil {
		t.Fatalf("Set(100) failed: %v", err)
	}
	if v, _ := f.Get(); v != 100.0 {
		t.Errorf("Get = %v, want 100", v)
	}
}

func TestUTF8_Codec(t *testing.T) {
	f, _ := New(UTF8(10))

	if err := f.Set("abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err := f.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "abc" {
		t.Errorf("Get = %q, want abc", v)
	}

	// Unused tail bytes are zero.
	for i := 3; i < 10; i++ {
		el := Must(f.Index(i))
		if el.Uint64() != 0 {
			t.Errorf("byte %d = %d, want 0", i, el.Uint64())
		}
	}
	el := Must(f.Index(0))
	if el.Uint64() != 'a' {
		t.Errorf("byte 0 = %d, want 'a'", el.Uint64())
	}

	// Longer input truncates to the declared width.
	if err := f.Set("0123456789abcdef"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := f.Get(); v != "0123456789" {
		t.Errorf("Get = %q, want 0123456789", v)
	}

	if err := f.Set(42.5); !errors.IsKind(err, errors.KindTypeMismatch) {
		t.Errorf("float into utf8: err = %v, want type_mismatch", err)
	}
}

func TestUTF8_Raw(t *testing.T) {
	f, _ := New(UTF8Raw(4, false))
	f.SetRaw(new(big.Int).SetBytes([]byte{'a', 0, 'b', 0}))
	v, err := f.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "a\x00b\x00" {
		t.Errorf("Get = %q, want embedded zero bytes preserved", v)
	}
}

func TestHex(t *testing.T) {
	f, _ := New(UInt(35))

	if err := f.SetHex("f1234567f"); err != nil {
		t.Fatalf("SetHex failed: %v", err)
	}
	// The 36th bit truncates away.
	if got := f.Uint64(); got != 0x71234567f {
		t.Errorf("raw = %#x, want 0x71234567f", got)
	}
	if got := f.Hex(); got != "71234567f" {
		t.Errorf("Hex = %q, want 71234567f", got)
	}

	// Prefixes and C-style suffixes are tolerated.
	if err := f.SetHex("0xfL"); err != nil {
		t.Fatalf("SetHex(0xfL) failed: %v", err)
	}
	if got := f.Uint64(); got != 15 {
		t.Errorf("raw = %d, want 15", got)
	}
	if got := f.Hex(); got != "00000000f" {
		t.Errorf("Hex = %q, want zero-padded width", got)
	}

	if err := f.SetHex("zz"); !errors.IsKind(err, errors.KindFormat) {
		t.Errorf("bad hex: err = %v, want format", err)
	}
}

func TestBin(t *testing.T) {
	f, _ := New(UInt(6))

	if err := f.SetBin("0B111L"); err != nil {
		t.Fatalf("SetBin failed: %v", err)
	}
	if got := f.Uint64(); got != 7 {
		t.Errorf("raw = %d, want 7", got)
	}
	if got := f.Bin(); got != "000111" {
		t.Errorf("Bin = %q, want 000111", got)
	}

	if err := f.SetBin("012"); !errors.IsKind(err, errors.KindFormat) {
		t.Errorf("bad binary: err = %v, want format", err)
	}
}

func TestJSON_Roundtrip(t *testing.T) {
	f, _ := New(parrotType())
	doc := `{"status": "pining", "plumage_rgb": [1, 2, 3], "name": "norwegian"}`
	if err := f.SetJSON(doc); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	out, err := f.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	want := `{"status":"pining","plumage_rgb":[1,2,3],"name":"norwegian"}`
	if out != want {
		t.Errorf("JSON = %s, want %s", out, want)
	}

	// Decode into a second field and compare registers.
	g, _ := New(parrotType())
	if err := g.SetJSON(out); err != nil {
		t.Fatalf("SetJSON roundtrip failed: %v", err)
	}
	if f.Raw().Cmp(g.Raw()) != 0 {
		t.Errorf("roundtrip registers differ: %s vs %s", f.Hex(), g.Hex())
	}

	if err := f.SetJSON("{"); !errors.IsKind(err, errors.KindFormat) {
		t.Errorf("bad JSON: err = %v, want format", err)
	}
}

func TestGetSet_Roundtrip(t *testing.T) {
	f, _ := New(parrotType())
	if err := f.Set(map[string]any{
		"status":      "resting",
		"plumage_rgb": []int{31, 0, 15},
		"name":        "polly",
	}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, err := f.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	g, _ := New(parrotType())
	if err := g.Set(v); err != nil {
		t.Fatalf("Set(Get()) failed: %v", err)
	}
	if f.Raw().Cmp(g.Raw()) != 0 {
		t.Errorf("roundtrip registers differ: %s vs %s", f.Hex(), g.Hex())
	}
}

func TestSet_RawIntegerReplacesComposite(t *testing.T) {
	f, _ := New(ArrayOf(UInt(4), 3))
	if err := f.Set(0xabc); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !f.Equal([]int{0xa, 0xb, 0xc}) {
		t.Errorf("array = %s, want [10 11 12]", f)
	}

	s, _ := New(MustStruct("s", F("a", UInt(3)), F("b", UInt(4))))
	if err := s.Set(91); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := Must(s.Field("a")).Uint64(); got != 5 {
		t.Errorf("a = %d, want 5", got)
	}
}

func TestSet_ArrayOverflow(t *testing.T) {
	f, _ := New(ArrayOf(UInt(4), 3))
	err := f.Set([]int{1, 2, 3, 4})
	if !errors.IsKind(err, errors.KindIndexOutOfRange) {
		t.Errorf("err = %v, want index_out_of_range", err)
	}
}

func TestSet_FieldToField(t *testing.T) {
	f, _ := New(UInt(8))
	g, _ := New(UInt(8))
	f.SetUint64(0x5a)
	if err := g.Set(f); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if g.Uint64() != 0x5a {
		t.Errorf("g = %#x, want 0x5a", g.Uint64())
	}
}
