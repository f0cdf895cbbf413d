package bitrec

import (
	"testing"
)

type parrotRecord struct {
	Status  string `bitrec:"status"`
	Plumage []int  `bitrec:"plumage_rgb"`
	Name    string `bitrec:"name"`
}

func TestUnmarshal_Struct(t *testing.T) {
	f, err := New(parrotType())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := f.Set(map[string]any{
		"status":      "pining",
		"plumage_rgb": []int{1, 2, 3},
		"name":        "polly",
	}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out parrotRecord
	if err := Unmarshal(f, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out.Status != "pining" {
		t.Errorf("Status = %q, want pining", out.Status)
	}
	if out.Name != "polly" {
		t.Errorf("Name = %q, want polly", out.Name)
	}
	if len(out.Plumage) != 3 || out.Plumage[0] != 1 || out.Plumage[2] != 3 {
		t.Errorf("Plumage = %v, want [1 2 3]", out.Plumage)
	}
}

func TestUnmarshal_Nested(t *testing.T) {
	inner := MustStruct("point",
		F("x", SInt(8)),
		F("y", SInt(8)),
	)
	outer := MustStruct("shape",
		F("kind", UIntEnum(2, NewEnum("dot", "line"))),
		F("origin", inner),
	)

	f, _ := New(outer)
	if err := f.Set(map[string]any{
		"kind":   "line",
		"origin": map[string]any{"x": -5, "y": 7},
	}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out struct {
		Kind   string `bitrec:"kind"`
		Origin struct {
			X int `bitrec:"x"`
			Y int `bitrec:"y"`
		} `bitrec:"origin"`
	}
	if err := Unmarshal(f, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out.Kind != "line" {
		t.Errorf("Kind = %q, want line", out.Kind)
	}
	if out.Origin.X != -5 || out.Origin.Y != 7 {
		t.Errorf("Origin = %+v, want {-5 7}", out.Origin)
	}
}

func TestUnmarshal_LeafIntoScalar(t *testing.T) {
	f, _ := New(Decimal(16, 2))
	if err := f.Set(1.25); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	var out float64
	if err := Unmarshal(f, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out != 1.25 {
		t.Errorf("out = %v, want 1.25", out)
	}
}
