// Package bitrec implements typed views over bit-level binary records.
//
// A record is described once as a tree of type descriptors (unsigned
// and signed integers, fixed-point numbers, enums, structs, arrays,
// UTF-8 strings, computed fields), allocated into a bit layout where
// the first declared field occupies the most significant bits, and
// bound to a single arbitrary-width register. Every field derived from
// a binding is a zero-copy view over that shared register: writes
// through a leaf are immediately visible through the root and every
// other view.
//
//	status := bitrec.MustStruct("status",
//		bitrec.F("mode", bitrec.UIntEnum(2, bitrec.NewEnum("off", "standby", "run"))),
//		bitrec.F("level", bitrec.Decimal(16, 2)),
//		bitrec.F("tag", bitrec.UTF8(4)),
//	)
//	f, err := bitrec.New(status)
//
// Values move in and out through typed Get/Set, raw bit patterns, hex,
// binary, and JSON text, or struct unmarshaling. The expr subpackage
// compiles arithmetic over field names into canonical shift-and-mask
// formulas for code generation and evaluation.
package bitrec
