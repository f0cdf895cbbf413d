// Package expr compiles symbolic field expressions into canonical
// shift/mask/or formulas.
//
// An input expression names fields of a composite ("a * b"); the
// compiler substitutes every free identifier with a read of the field's
// bit range and renders the result as a function of n, the raw root
// register:
//
//	(n >> 4 & 0x7) * (n & 0xf)
//
// With a nonzero word size, n is instead an array of fixed-width
// unsigned words and a field may straddle a word boundary, in which
// case the read combines two words:
//
//	((n[0] >> 28 & 0xf) | (n[1] & 0xf) << 4)
//
// Fields spanning more than two words are a design limit and fail with
// an unsupported error.
//
// Parsing, leaf rewriting, and rendering are delegated to go/parser,
// go/ast, and go/printer; rendering is deterministic, so the text can
// key deduplication of compiled fields. Formulas can also be evaluated
// directly via a small arbitrary-precision interpreter (Eval,
// EvalWords).
package expr
