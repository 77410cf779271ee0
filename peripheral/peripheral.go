package peripheral

import (
	"context"
	"errors"
	"fmt"

	"omibyte.io/regview/bitutil"
	"omibyte.io/regview/memio"
	"omibyte.io/regview/memrange"
)

type Options struct {
	Name        string
	Description string
	GroupName   string
	BaseAddress uint64
	TotalLength uint64

	// Defaults inherited by the registers. Zero values select read-write,
	// 32 bits and zero.
	AccessType AccessType
	Size       uint
	ResetValue uint64

	// GapThreshold is the largest hole in bytes between two registers that
	// are still read together. A negative value never merges.
	GapThreshold int
	// MaxChunk bounds a single read. Zero selects memio.MaxChunk.
	MaxChunk uint64
	// Concurrency bounds the reads in flight during an update. Zero means no
	// bound.
	Concurrency int
}

type Peripheral struct {
	node
	baseAddress  uint64
	totalLength  uint64
	groupName    string
	accessType   AccessType
	size         uint
	resetValue   uint64
	gapThreshold int
	maxChunk     uint64
	concurrency  int

	children []child

	// Only touched by UpdateData and CollectRanges.
	currentValue []byte
	addrRanges   []memrange.AddrRange
	bufferLength uint64
}

func New(opts Options) *Peripheral {
	p := &Peripheral{
		node:         node{name: opts.Name, description: opts.Description},
		baseAddress:  opts.BaseAddress,
		totalLength:  opts.TotalLength,
		groupName:    opts.GroupName,
		accessType:   opts.AccessType,
		size:         opts.Size,
		resetValue:   opts.ResetValue,
		gapThreshold: opts.GapThreshold,
		maxChunk:     opts.MaxChunk &^ 3,
		concurrency:  opts.Concurrency,
	}
	if p.accessType == Inherit {
		p.accessType = ReadWrite
	}
	if p.size == 0 {
		p.size = 32
	}
	if p.maxChunk == 0 {
		p.maxChunk = memio.MaxChunk
	}
	return p
}

func (p *Peripheral) BaseAddress() uint64 { return p.baseAddress }
func (p *Peripheral) TotalLength() uint64 { return p.totalLength }
func (p *Peripheral) GroupName() string { return p.groupName }
func (p *Peripheral) AccessType() AccessType { return p.accessType }
func (p *Peripheral) Size() uint { return p.size }
func (p *Peripheral) ResetValue() uint64 { return p.resetValue }
func (p *Peripheral) Parent() Node { return nil }
func (p *Peripheral) Peripheral() *Peripheral { return p }
func (p *Peripheral) Children() []Node { return toNodes(p.children) }

// Format resolves Auto to Hex at the top of the tree.
func (p *Peripheral) Format() NumberFormat {
	if p.format == Auto {
		return Hex
	}
	return p.format
}

func (p *Peripheral) Label() string {
	return fmt.Sprintf("%s @ %s", p.name, bitutil.HexFormat(p.baseAddress, 8, true))
}

func (p *Peripheral) addChild(c child) {
	p.children = insertSorted(p.children, c)
}

func (p *Peripheral) Bytes(offset, size uint64) []byte {
	if offset+size > uint64(len(p.currentValue)) {
		return nil
	}
	return p.currentValue[offset : offset+size]
}

func (p *Peripheral) Address(offset uint64) uint64 {
	return p.baseAddress + offset
}

func (p *Peripheral) PeripheralOffset(offset uint64) uint64 {
	return offset
}

// AddrRanges returns the read plan computed by CollectRanges.
func (p *Peripheral) AddrRanges() []memrange.AddrRange {
	return p.addrRanges
}

// CollectRanges computes the read plan from the registers of the whole tree.
// It must be called once the tree is complete. The spans of all registers are
// sorted, moved to absolute addresses, merged where the hole between them is
// within the gap threshold and then cut into chunks of at most MaxChunk bytes.
func (p *Peripheral) CollectRanges() {
	var spans []memrange.AddrRange
	for _, c := range p.children {
		spans = c.collectRanges(spans)
	}
	memrange.Sort(spans)

	p.bufferLength = p.totalLength
	for i := range spans {
		if end := spans[i].NextAddr(); end > p.bufferLength {
			p.bufferLength = end
		}
		spans[i].Base += p.baseAddress
	}

	merged := memrange.Coalesce(spans, p.gapThreshold)
	p.addrRanges = memrange.SplitIntoChunks(merged, p.maxChunk)
	p.currentValue = nil
}

// InUse returns a map of the bytes of the peripheral covered by registers.
func (p *Peripheral) InUse() *memrange.InUse {
	var spans []memrange.AddrRange
	for _, c := range p.children {
		spans = c.collectRanges(spans)
	}

	length := p.totalLength
	for _, s := range spans {
		if end := s.NextAddr(); end > length {
			length = end
		}
	}
	u := memrange.NewInUse(int(length))
	for _, s := range spans {
		u.SetAddrRange(int(s.Base), int(s.Length))
	}
	return u
}

// UpdateData reads the peripheral and decodes every register from the new
// data. Nothing happens when the peripheral is collapsed. Decoding starts
// only once every read has settled. A failed read leaves sentinel bytes in
// the buffer and the registers are still decoded from what was read.
func (p *Peripheral) UpdateData(ctx context.Context, r memio.Reader) (bool, error) {
	if !p.expanded {
		return false, nil
	}

	if p.currentValue == nil {
		p.currentValue = make([]byte, p.bufferLength)
	}

	var errs []error
	batch := memio.Batch{Reader: r, Concurrency: p.concurrency}
	if err := batch.ReadChunks(ctx, p.baseAddress, p.addrRanges, p.currentValue); err != nil {
		errs = append(errs, err)
	}

	for _, c := range p.children {
		if _, err := c.UpdateData(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return true, fmt.Errorf("failed to update peripheral %s: %w", p.name, errors.Join(errs...))
	}
	return true, nil
}

func (p *Peripheral) SaveState(prefix string) []NodeState {
	path := joinPath(prefix, p.name)
	var result []NodeState
	if !p.isDefault() {
		result = append(result, p.state(path))
	}
	for _, c := range p.children {
		result = append(result, c.SaveState(path)...)
	}
	return result
}

func (p *Peripheral) FindByPath(path []string) Node {
	if len(path) == 0 {
		return p
	}
	if c, ok := findChild(p.children, path[0]); ok {
		return c.FindByPath(path[1:])
	}
	return nil
}

// Registers returns every register of the tree in offset order.
func (p *Peripheral) Registers() []*Register {
	var result []*Register
	var walk func(children []child)
	walk = func(children []child) {
		for _, c := range children {
			switch c := c.(type) {
			case *Register:
				result = append(result, c)
			case *Cluster:
				walk(c.children)
			}
		}
	}
	walk(p.children)
	return result
}
