package bitrec

import (
	"math/big"
	"sync"
)

// big.Int scratch pool for masked read-modify-write cycles. Raw writes
// are the hot path of the hoisted-handle usage pattern, so the two
// temporaries per write are recycled.
var bigPool = sync.Pool{
	New: func() any {
		return new(big.Int)
	},
}

func getBig() *big.Int {
	return bigPool.Get().(*big.Int)
}

func putBig(v *big.Int) {
	bigPool.Put(v)
}
