package bitrec

import (
	"testing"

	"github.com/wippyai/bitrec/errors"
)

func TestAllocate_StructOffsets(t *testing.T) {
	// First declared field lands in the most significant bits.
	s := MustStruct("s",
		F("a", UInt(3)),
		F("b", UInt(4)),
		F("c", UInt(5)),
	)
	if s.Size != 12 {
		t.Fatalf("Size = %d, want 12", s.Size)
	}

	l, err := Allocate(s)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	tests := []struct {
		name   string
		offset int
		size   int
	}{
		{"a", 9, 3},
		{"b", 5, 4},
		{"c", 0, 5},
	}
	for _, tt := range tests {
		c, ok := l.Child(tt.name)
		if !ok {
			t.Fatalf("Child(%q) missing", tt.name)
		}
		if c.Offset() != tt.offset {
			t.Errorf("%s offset = %d, want %d", tt.name, c.Offset(), tt.offset)
		}
		if c.BitSize() != tt.size {
			t.Errorf("%s size = %d, want %d", tt.name, c.BitSize(), tt.size)
		}
		if c.Name() != "s."+tt.name {
			t.Errorf("%s name = %q, want %q", tt.name, c.Name(), "s."+tt.name)
		}
		if c.Root() != l {
			t.Errorf("%s root is not the struct layout", tt.name)
		}
	}
}

func TestAllocate_NestedOffsets(t *testing.T) {
	inner := MustStruct("inner",
		F("x", UInt(2)),
		F("y", UInt(2)),
	)
	outer := MustStruct("outer",
		F("head", UInt(4)),
		F("body", inner),
	)

	l, err := Allocate(outer)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	body, _ := l.Child("body")
	if body.Offset() != 0 {
		t.Errorf("body offset = %d, want 0", body.Offset())
	}
	head, _ := l.Child("head")
	if head.Offset() != 4 {
		t.Errorf("head offset = %d, want 4", head.Offset())
	}
	y, ok := body.Child("y")
	if !ok {
		t.Fatal("body.y missing")
	}
	if y.Offset() != 0 {
		t.Errorf("body.y offset = %d, want 0", y.Offset())
	}
	if y.Name() != "outer.body.y" {
		t.Errorf("body.y name = %q", y.Name())
	}
	x, _ := body.Child("x")
	if x.Offset() != 2 {
		t.Errorf("body.x offset = %d, want 2", x.Offset())
	}
}

func TestAllocate_ArrayOffsets(t *testing.T) {
	arr := ArrayOf(UInt(4), 3)
	l, err := Allocate(arr)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	// Index 0 is the most significant element.
	wantOffsets := []int{8, 4, 0}
	for i, want := range wantOffsets {
		el, ok := l.Elem(i)
		if !ok {
			t.Fatalf("Elem(%d) missing", i)
		}
		if el.Offset() != want {
			t.Errorf("elem %d offset = %d, want %d", i, el.Offset(), want)
		}
	}
	if _, ok := l.Elem(3); ok {
		t.Error("Elem(3) should be out of range")
	}
}

func TestAllocate_Errors(t *testing.T) {
	if _, err := Allocate(nil); !errors.IsKind(err, errors.KindConfiguration) {
		t.Errorf("nil type: err = %v, want configuration", err)
	}
	if _, err := Allocate(UInt(0)); !errors.IsKind(err, errors.KindConfiguration) {
		t.Errorf("zero width: err = %v, want configuration", err)
	}
}

func TestNewStruct_Validation(t *testing.T) {
	tests := []struct {
		name   string
		fields []FieldDef
	}{
		{"empty name", []FieldDef{F("", UInt(1))}},
		{"leading underscore", []FieldDef{F("_x", UInt(1))}},
		{"trailing underscore", []FieldDef{F("x_", UInt(1))}},
		{"not an identifier", []FieldDef{F("a-b", UInt(1))}},
		{"duplicate", []FieldDef{F("x", UInt(1)), F("x", UInt(2))}},
		{"nil type", []FieldDef{F("x", nil)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStruct("t", tt.fields...); !errors.IsKind(err, errors.KindConfiguration) {
				t.Errorf("err = %v, want configuration", err)
			}
		})
	}
}

func TestType_Repr(t *testing.T) {
	tests := []struct {
		t    *Type
		want string
	}{
		{UInt(4), "uint(4)"},
		{SInt(7), "sint(7)"},
		{Decimal(16, 2), "decimal(16, 2)"},
		{Fixed(8, 1, 2), "fixed(8, 1, 2)"},
		{UTF8(10), "utf8(10)"},
		{ArrayOf(UInt(5), 3), "uint(5)[3]"},
	}
	for _, tt := range tests {
		if got := tt.t.Repr(); got != tt.want {
			t.Errorf("Repr() = %q, want %q", got, tt.want)
		}
	}

	s := MustStruct("pair", F("a", UInt(3)), F("b", UInt(4)))
	want := "struct('pair', [('a', uint(3)), ('b', uint(4))])"
	if got := s.Repr(); got != want {
		t.Errorf("struct Repr() = %q, want %q", got, want)
	}
}

func TestEnum(t *testing.T) {
	e := NewEnum("dead", "pining", "resting")
	if e.Len() != 3 {
		t.Fatalf("Len = %d, want 3", e.Len())
	}
	if n, ok := e.Ordinal("pining"); !ok || n != 1 {
		t.Errorf("Ordinal(pining) = %d,%v", n, ok)
	}
	if l, ok := e.Label(2); !ok || l != "resting" {
		t.Errorf("Label(2) = %q,%v", l, ok)
	}
	if _, ok := e.Ordinal("perished"); ok {
		t.Error("Ordinal should miss undefined labels")
	}
	if _, ok := e.Label(3); ok {
		t.Error("Label should miss undefined ordinals")
	}

	m := EnumMap(map[string]uint64{"off": 0, "on": 8})
	if got := m.Labels(); len(got) != 2 || got[0] != "off" || got[1] != "on" {
		t.Errorf("Labels() = %v", got)
	}
}

func TestFixed_Bounds(t *testing.T) {
	d := Decimal(16, 2)
	if d.Divisor() != 100 {
		t.Errorf("Divisor = %v, want 100", d.Divisor())
	}
	if d.Max() != 655.35 {
		t.Errorf("Max = %v, want 655.35", d.Max())
	}
	if d.Min() != -655.35 {
		t.Errorf("Min = %v, want -655.35", d.Min())
	}
}
