// Package errors provides structured error types for bitrec.
//
// Every failure carries a Phase (where in processing it happened) and a
// Kind (what went wrong), plus an optional field path, descriptor type
// name, offending value, and cause. Errors match with errors.Is when
// both Phase and Kind agree; IsKind matches on Kind alone.
//
// The taxonomy is deliberately small:
//
//	configuration       invalid declaration (abstract allocation, reserved names)
//	range               bounded numeric value out of range
//	format              malformed hex/binary text
//	unknown_field       unknown symbolic name on a struct
//	index_out_of_range  bad index on a fixed-dimension composite
//	not_subscriptable   indexing a leaf
//	type_mismatch       wrong Go type for a codec
//	invalid_enum        undefined enum label
//	unsupported         design limits (e.g. formula spans >2 words)
//	invalid_data        everything else that is malformed
//
// All validation is eager: errors surface at assignment or compile time
// and propagate unmodified. The one deliberate exception is plain
// integer writes, which truncate modulo 2^size without error.
package errors
