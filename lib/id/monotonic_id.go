package id

import (
	"strconv"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

const cacheLinePadSize = unsafe.Sizeof(cpu.CacheLinePad{})

// monotonicNonZeroID is an ID generator.
// Only increase, if it overflows, it will be reset to 1.
// The counter occupies a whole cache line to keep concurrent callers
// from false sharing with neighbouring data.
type monotonicNonZeroID struct {
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte // padding for CPU cache line, avoid false sharing
	val uint64
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte // padding for CPU cache line, avoid false sharing
}

func (id *monotonicNonZeroID) next() uint64 {
	var v uint64
	if v = atomic.AddUint64(&id.val, 1); v == 0 {
		v = atomic.AddUint64(&id.val, 1)
	}
	return v
}

// MonotonicNonZeroID is the strictly increasing, never zero sequence
// used by the randomized container tests to mint unique keys.
func MonotonicNonZeroID() (Generator, error) {
	src := &monotonicNonZeroID{val: 0}
	gen := &idDelegator{}
	gen.number = func() uint64 {
		return src.next()
	}
	gen.str = func() string {
		return strconv.FormatUint(src.next(), 10)
	}
	return gen, nil
}
