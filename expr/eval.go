package expr

import (
	"go/ast"
	"go/token"
	"math/big"

	"github.com/wippyai/bitrec/errors"
)

// Eval evaluates an unbounded formula against the raw root register.
func (f *Formula) Eval(n *big.Int) (*big.Int, error) {
	if f.wordSize != 0 {
		return nil, errors.TypeMismatch(errors.PhaseEval, nil,
			"scalar register", "word array (formula compiled with word size)")
	}
	return eval(f.tree, &env{n: n})
}

// EvalWords evaluates a word-bounded formula against a fixed-size array
// of equal-width unsigned words.
func (f *Formula) EvalWords(words []uint64) (*big.Int, error) {
	if f.wordSize == 0 {
		return nil, errors.TypeMismatch(errors.PhaseEval, nil,
			"word array", "scalar register (formula compiled unbounded)")
	}
	if f.wordSize < 64 {
		max := uint64(1)<<uint(f.wordSize) - 1
		for _, w := range words {
			if w > max {
				return nil, errors.OutOfRange(nil, w, 0, max)
			}
		}
	}
	return eval(f.tree, &env{words: words, bounded: true})
}

type env struct {
	n       *big.Int
	words   []uint64
	bounded bool
}

func eval(e ast.Expr, ev *env) (*big.Int, error) {
	switch n := e.(type) {
	case *ast.BasicLit:
		v, ok := new(big.Int).SetString(n.Value, 0)
		if !ok {
			return nil, errors.InvalidData(errors.PhaseEval, nil, "bad integer literal %q", n.Value)
		}
		return v, nil

	case *ast.Ident:
		if n.Name != "n" {
			return nil, errors.UnknownField(errors.PhaseEval, nil, n.Name)
		}
		if ev.bounded {
			return nil, errors.TypeMismatch(errors.PhaseEval, nil, "scalar n", "indexed n[j]")
		}
		return new(big.Int).Set(ev.n), nil

	case *ast.IndexExpr:
		if !ev.bounded {
			return nil, errors.TypeMismatch(errors.PhaseEval, nil, "indexed n[j]", "scalar n")
		}
		idx, err := eval(n.Index, ev)
		if err != nil {
			return nil, err
		}
		if !idx.IsInt64() || idx.Int64() < 0 || idx.Int64() >= int64(len(ev.words)) {
			return nil, errors.IndexOutOfRange(errors.PhaseEval, nil, int(idx.Int64()), len(ev.words))
		}
		return new(big.Int).SetUint64(ev.words[idx.Int64()]), nil

	case *ast.ParenExpr:
		return eval(n.X, ev)

	case *ast.UnaryExpr:
		x, err := eval(n.X, ev)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.ADD:
			return x, nil
		case token.SUB:
			return x.Neg(x), nil
		case token.XOR:
			return x.Not(x), nil
		}
		return nil, errors.Unsupported(errors.PhaseEval, "unary operator %s", n.Op)

	case *ast.BinaryExpr:
		x, err := eval(n.X, ev)
		if err != nil {
			return nil, err
		}
		y, err := eval(n.Y, ev)
		if err != nil {
			return nil, err
		}
		return evalBinary(n.Op, x, y)
	}

	return nil, errors.Unsupported(errors.PhaseEval, "syntax %T", e)
}

func evalBinary(op token.Token, x, y *big.Int) (*big.Int, error) {
	z := new(big.Int)
	switch op {
	case token.ADD:
		return z.Add(x, y), nil
	case token.SUB:
		return z.Sub(x, y), nil
	case token.MUL:
		return z.Mul(x, y), nil
	case token.QUO:
		if y.Sign() == 0 {
			return nil, errors.InvalidData(errors.PhaseEval, nil, "division by zero")
		}
		return z.Quo(x, y), nil
	case token.REM:
		if y.Sign() == 0 {
			return nil, errors.InvalidData(errors.PhaseEval, nil, "division by zero")
		}
		return z.Rem(x, y), nil
	case token.SHL, token.SHR:
		if y.Sign() < 0 || !y.IsUint64() || y.Uint64() > 1<<20 {
			return nil, errors.OutOfRange(nil, y.String(), 0, 1<<20)
		}
		if op == token.SHL {
			return z.Lsh(x, uint(y.Uint64())), nil
		}
		return z.Rsh(x, uint(y.Uint64())), nil
	case token.AND:
		return z.And(x, y), nil
	case token.OR:
		return z.Or(x, y), nil
	case token.XOR:
		return z.Xor(x, y), nil
	case token.AND_NOT:
		return z.AndNot(x, y), nil
	}
	return nil, errors.Unsupported(errors.PhaseEval, "operator %s", op)
}
