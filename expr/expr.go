package expr

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"math/big"

	"go.uber.org/zap"

	"github.com/wippyai/bitrec/errors"
)

// Resolver maps a free identifier in an expression to the bit range it
// reads: offset from the LSB of the root register and a mask of width
// ones.
type Resolver func(name string) (offset int, mask *big.Int, err error)

// Formula is a compiled field expression. The rendered source is a
// function of n: the raw root register when the word size is zero, or
// an array of fixed-width unsigned words otherwise.
type Formula struct {
	tree     ast.Expr
	src      string
	wordSize int
}

// Compile parses src, substitutes every free identifier with its
// canonical shift/mask read via resolve, and renders the result.
// Identical (src, resolved offsets/masks, wordSize) inputs always
// produce identical rendered text.
func Compile(src string, resolve Resolver, wordSize int) (*Formula, error) {
	if wordSize < 0 || wordSize > 64 {
		return nil, errors.Unsupported(errors.PhaseCompile, "word size %d not supported (0 or 1..64)", wordSize)
	}

	tree, err := parser.ParseExpr(src)
	if err != nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindFormat).
			Detail("parse %q", src).
			Cause(err).
			Build()
	}

	out, err := rewrite(tree, resolve, wordSize)
	if err != nil {
		return nil, err
	}

	f := &Formula{
		tree:     out,
		src:      render(out),
		wordSize: wordSize,
	}

	Logger().Debug("compiled formula",
		zap.String("expr", src),
		zap.String("source", f.src),
		zap.Int("word_size", wordSize))

	return f, nil
}

// Source returns the rendered formula text. The output is a
// conventional parenthesized arithmetic/bitwise expression, valid as-is
// for a native toolchain.
func (f *Formula) Source() string { return f.src }

// WordSize returns the word width the formula was compiled for, zero
// meaning unbounded integers.
func (f *Formula) WordSize() int { return f.wordSize }

// IsIdentifier reports whether src is a single plain identifier rather
// than a compound expression.
func IsIdentifier(src string) bool {
	return token.IsIdentifier(src)
}

// rewrite walks the parsed tree, replacing identifier leaves and
// rejecting anything outside the supported operator surface.
func rewrite(e ast.Expr, resolve Resolver, wordSize int) (ast.Expr, error) {
	switch n := e.(type) {
	case *ast.Ident:
		offset, mask, err := resolve(n.Name)
		if err != nil {
			return nil, err
		}
		return FieldRef(offset, mask, wordSize)

	case *ast.BasicLit:
		if n.Kind != token.INT {
			return nil, errors.Unsupported(errors.PhaseCompile, "literal %s not supported in field expressions", n.Value)
		}
		return n, nil

	case *ast.ParenExpr:
		x, err := rewrite(n.X, resolve, wordSize)
		if err != nil {
			return nil, err
		}
		return &ast.ParenExpr{X: x}, nil

	case *ast.UnaryExpr:
		switch n.Op {
		case token.ADD, token.SUB, token.XOR:
		default:
			return nil, errors.Unsupported(errors.PhaseCompile, "unary operator %s not supported", n.Op)
		}
		x, err := rewrite(n.X, resolve, wordSize)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: n.Op, X: x}, nil

	case *ast.BinaryExpr:
		if !binaryOps[n.Op] {
			return nil, errors.Unsupported(errors.PhaseCompile, "operator %s not supported", n.Op)
		}
		x, err := rewrite(n.X, resolve, wordSize)
		if err != nil {
			return nil, err
		}
		y, err := rewrite(n.Y, resolve, wordSize)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{X: x, Op: n.Op, Y: y}, nil

	default:
		return nil, errors.Unsupported(errors.PhaseCompile, "syntax %T not supported in field expressions", e)
	}
}

var binaryOps = map[token.Token]bool{
	token.ADD:     true,
	token.SUB:     true,
	token.MUL:     true,
	token.QUO:     true,
	token.REM:     true,
	token.SHL:     true,
	token.SHR:     true,
	token.AND:     true,
	token.OR:      true,
	token.XOR:     true,
	token.AND_NOT: true,
}

// FieldRef returns the canonical read subtree for a field at the given
// offset and mask.
//
// Unbounded (wordSize 0):
//
//	(n >> offset & mask)
//
// Word-bounded, field inside word j:
//
//	(n[j] >> k & mask)
//
// Word-bounded, field straddling words j and j+1:
//
//	((n[j] >> k & maskLow) | (n[j+1] & maskHigh) << (W-k))
//
// A field spanning more than two words is not supported.
func FieldRef(offset int, mask *big.Int, wordSize int) (ast.Expr, error) {
	if wordSize <= 0 {
		return shiftAnd(ast.NewIdent("n"), offset, mask), nil
	}

	j := offset / wordSize
	k := offset % wordSize
	bitsLow := wordSize - k

	if mask.BitLen() <= bitsLow {
		return shiftAnd(wordRef(j), k, mask), nil
	}

	if mask.BitLen() > bitsLow+wordSize {
		return nil, errors.Unsupported(errors.PhaseCompile,
			"field of width %d at offset %d spans more than two %d-bit words",
			mask.BitLen(), offset, wordSize)
	}

	low := new(big.Int).Lsh(big.NewInt(1), uint(bitsLow))
	low.Sub(low, big.NewInt(1))
	low.And(low, mask)

	high := new(big.Int).Rsh(mask, uint(bitsLow))

	lo := shiftAnd(wordRef(j), k, low)
	hi := &ast.BinaryExpr{
		X:  paren(&ast.BinaryExpr{X: wordRef(j + 1), Op: token.AND, Y: hexLit(high)}),
		Op: token.SHL,
		Y:  intLit(bitsLow),
	}
	return paren(&ast.BinaryExpr{X: lo, Op: token.OR, Y: hi}), nil
}

// shiftAnd builds (x >> offset & mask), omitting the shift when the
// offset is zero.
func shiftAnd(x ast.Expr, offset int, mask *big.Int) ast.Expr {
	node := x
	if offset > 0 {
		node = &ast.BinaryExpr{X: node, Op: token.SHR, Y: intLit(offset)}
	}
	return paren(&ast.BinaryExpr{X: node, Op: token.AND, Y: hexLit(mask)})
}

func wordRef(j int) ast.Expr {
	return &ast.IndexExpr{X: ast.NewIdent("n"), Index: intLit(j)}
}

func intLit(v int) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.INT, Value: big.NewInt(int64(v)).String()}
}

func hexLit(v *big.Int) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.INT, Value: "0x" + v.Text(16)}
}

func paren(x ast.Expr) ast.Expr {
	return &ast.ParenExpr{X: x}
}

func render(e ast.Expr) string {
	var buf bytes.Buffer
	// printer output is deterministic for a given tree, which makes the
	// rendered text usable as a deduplication key.
	_ = printer.Fprint(&buf, token.NewFileSet(), e)
	return buf.String()
}
