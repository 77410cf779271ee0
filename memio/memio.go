// Package memio issues memory reads and writes against a debug session.
package memio

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"omibyte.io/regview/memrange"
)

// Sentinel is stored in place of bytes that could not be read.
const Sentinel = 0xff

// MaxChunk is the largest single read issued by ReadMemory. It is kept a
// multiple of 4 so memory mapped registers are never split.
const MaxChunk = 4096

// Reader reads length bytes of target memory at addr.
type Reader interface {
	ReadMemory(ctx context.Context, addr uint64, length uint64) ([]byte, error)
}

// Writer writes data, a hex encoded byte string, to target memory at addr.
type Writer interface {
	WriteMemory(ctx context.Context, addr uint64, data string) error
}

// Session is a debug session that can both read and write target memory.
type Session interface {
	Reader
	Writer
}

// Batch reads a set of ranges as one unit of work.
type Batch struct {
	Reader Reader

	// Concurrency bounds the number of reads in flight. Zero issues every read
	// at once.
	Concurrency int
}

type readResult struct {
	data []byte
	err  error
}

// ReadChunks reads every range concurrently and stores the bytes of each at
// range.Base-startAddr in storeTo. The call returns once every read has
// settled. The bytes of a failed range are set to Sentinel and the error of
// every failed range is reported together, wrapped in ErrReadFailed. Bytes of
// the ranges that did succeed are stored either way.
func (b Batch) ReadChunks(ctx context.Context, startAddr uint64, ranges []memrange.AddrRange, storeTo []byte) error {
	for _, r := range ranges {
		if r.Base < startAddr || r.NextAddr()-startAddr > uint64(len(storeTo)) {
			return fmt.Errorf("%w: %v (buffer %#x+%d)", ErrRangeOutsideBuffer, r, startAddr, len(storeTo))
		}
	}

	results := make([]readResult, len(ranges))
	var g errgroup.Group
	if b.Concurrency > 0 {
		g.SetLimit(b.Concurrency)
	}
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			data, err := b.Reader.ReadMemory(ctx, r.Base, r.Length)
			results[i] = readResult{data: data, err: err}
			// Never fail the group, every read has to settle.
			return nil
		})
	}
	g.Wait()

	var errs []error
	for i, r := range ranges {
		dst := storeTo[r.Base-startAddr : r.NextAddr()-startAddr]
		res := results[i]
		if res.err != nil {
			fill(dst, Sentinel)
			errs = append(errs, fmt.Errorf("%v: %w", r, res.err))
			continue
		}
		n := copy(dst, res.data)
		fill(dst[n:], Sentinel)
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrReadFailed}, errs...)...)
	}
	return nil
}

// Read reads length bytes at startAddr into storeTo in chunks of at most
// MaxChunk bytes.
func (b Batch) Read(ctx context.Context, startAddr uint64, length uint64, storeTo []byte) error {
	ranges := memrange.SplitIntoChunks([]memrange.AddrRange{memrange.New(startAddr, length)}, MaxChunk)
	return b.ReadChunks(ctx, startAddr, ranges, storeTo)
}

// ReadMemoryChunks reads ranges with no bound on concurrency. See
// Batch.ReadChunks.
func ReadMemoryChunks(ctx context.Context, r Reader, startAddr uint64, ranges []memrange.AddrRange, storeTo []byte) error {
	return Batch{Reader: r}.ReadChunks(ctx, startAddr, ranges, storeTo)
}

// ReadMemory reads length bytes at startAddr. See Batch.Read.
func ReadMemory(ctx context.Context, r Reader, startAddr uint64, length uint64, storeTo []byte) error {
	return Batch{Reader: r}.Read(ctx, startAddr, length, storeTo)
}

// WriteBytes hex encodes data and writes it at addr.
func WriteBytes(ctx context.Context, w Writer, addr uint64, data []byte) error {
	if err := w.WriteMemory(ctx, addr, hex.EncodeToString(data)); err != nil {
		return errors.Join(ErrWriteFailed, fmt.Errorf("%#08x: %w", addr, err))
	}
	return nil
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
