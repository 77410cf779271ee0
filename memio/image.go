package memio

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/exp/slices"

	"omibyte.io/regview/bitutil"
)

// Segment is a run of target memory held by an Image.
type Segment struct {
	Base uint64
	Data []byte
}

func (s Segment) contains(addr uint64) bool {
	return addr >= s.Base && addr-s.Base < uint64(len(s.Data))
}

// Image is a sparse in-memory copy of target memory, such as a set of dumps
// taken from a halted device. It implements Session and is safe for
// concurrent use.
type Image struct {
	mu       sync.RWMutex
	segments []Segment
}

func NewImage() *Image {
	return &Image{}
}

// Add maps data at base. Bytes of a later segment shadow those of an earlier
// one where they overlap.
func (m *Image) Add(base uint64, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments = append(m.segments, Segment{Base: base, Data: slices.Clone(data)})
}

// Load maps the whole content of r at base.
func (m *Image) Load(r io.Reader, base uint64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.Add(base, data)
	return nil
}

// LoadFile maps a raw dump given as "path@address".
func (m *Image) LoadFile(spec string) error {
	path, base, err := ParseImageSpec(spec)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return m.Load(file, base)
}

// ParseImageSpec splits "path@address" into its parts.
func ParseImageSpec(spec string) (string, uint64, error) {
	i := strings.LastIndex(spec, "@")
	if i <= 0 {
		return "", 0, fmt.Errorf("%w: %q, expected path@address", ErrInvalidImageSpec, spec)
	}
	base, err := bitutil.ParseInteger(spec[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrInvalidImageSpec, spec, err)
	}
	return spec[:i], base, nil
}

// find returns the last added segment holding addr.
func (m *Image) find(addr uint64) (*Segment, bool) {
	for i := len(m.segments) - 1; i >= 0; i-- {
		if m.segments[i].contains(addr) {
			return &m.segments[i], true
		}
	}
	return nil, false
}

func (m *Image) ReadMemory(ctx context.Context, addr uint64, length uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]byte, length)
	for i := range result {
		a := addr + uint64(i)
		seg, ok := m.find(a)
		if !ok {
			return nil, fmt.Errorf("%w: %#08x", ErrUnmapped, a)
		}
		result[i] = seg.Data[a-seg.Base]
	}
	return result, nil
}

func (m *Image) WriteMemory(ctx context.Context, addr uint64, data string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf, err := hex.DecodeString(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Check the whole span first so a failed write leaves memory untouched.
	for i := range buf {
		if _, ok := m.find(addr + uint64(i)); !ok {
			return fmt.Errorf("%w: %#08x", ErrUnmapped, addr+uint64(i))
		}
	}
	for i, v := range buf {
		seg, _ := m.find(addr + uint64(i))
		seg.Data[addr+uint64(i)-seg.Base] = v
	}
	return nil
}
