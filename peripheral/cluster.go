package peripheral

import (
	"context"
	"errors"
	"fmt"

	"omibyte.io/regview/bitutil"
	"omibyte.io/regview/memio"
	"omibyte.io/regview/memrange"
)

type ClusterOptions struct {
	Name          string
	Description   string
	AddressOffset uint64

	// Zero values inherit from the parent.
	AccessType AccessType
	Size       uint
	ResetValue *uint64
}

// Cluster is a group of registers at an offset inside a peripheral or
// another cluster.
type Cluster struct {
	node
	parent     Container
	offset     uint64
	accessType AccessType
	size       uint
	resetValue uint64

	children []child
}

// NewCluster creates a cluster and adds it to parent.
func NewCluster(parent Container, opts ClusterOptions) *Cluster {
	c := &Cluster{
		node:       node{name: opts.Name, description: opts.Description},
		parent:     parent,
		offset:     opts.AddressOffset,
		accessType: opts.AccessType,
		size:       opts.Size,
		resetValue: parent.ResetValue(),
	}
	if c.accessType == Inherit {
		c.accessType = parent.AccessType()
	}
	if c.size == 0 {
		c.size = parent.Size()
	}
	if opts.ResetValue != nil {
		c.resetValue = *opts.ResetValue
	}
	parent.addChild(c)
	return c
}

func (c *Cluster) Offset() uint64 { return c.offset }
func (c *Cluster) AccessType() AccessType { return c.accessType }
func (c *Cluster) Size() uint { return c.size }
func (c *Cluster) ResetValue() uint64 { return c.resetValue }
func (c *Cluster) Parent() Node { return c.parent }
func (c *Cluster) Peripheral() *Peripheral { return c.parent.Peripheral() }
func (c *Cluster) Children() []Node { return toNodes(c.children) }

func (c *Cluster) Format() NumberFormat {
	if c.format != Auto {
		return c.format
	}
	return c.parent.Format()
}

func (c *Cluster) Label() string {
	return fmt.Sprintf("%s [%s]", c.name, bitutil.HexFormat(c.offset, 0, true))
}

func (c *Cluster) addChild(ch child) {
	c.children = insertSorted(c.children, ch)
}

func (c *Cluster) Bytes(offset, size uint64) []byte {
	return c.parent.Bytes(c.offset+offset, size)
}

func (c *Cluster) Address(offset uint64) uint64 {
	return c.parent.Address(c.offset + offset)
}

func (c *Cluster) PeripheralOffset(offset uint64) uint64 {
	return c.parent.PeripheralOffset(c.offset + offset)
}

// collectRanges appends the spans of the registers below, moved by the
// offset of the cluster.
func (c *Cluster) collectRanges(acc []memrange.AddrRange) []memrange.AddrRange {
	var spans []memrange.AddrRange
	for _, ch := range c.children {
		spans = ch.collectRanges(spans)
	}
	for _, s := range spans {
		s.Base += c.offset
		acc = append(acc, s)
	}
	return acc
}

// UpdateData decodes the registers of the cluster from the buffer of the
// peripheral. It does not read memory itself.
func (c *Cluster) UpdateData(ctx context.Context, r memio.Reader) (bool, error) {
	var errs []error
	for _, ch := range c.children {
		if _, err := ch.UpdateData(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return true, errors.Join(errs...)
}

func (c *Cluster) SaveState(prefix string) []NodeState {
	path := joinPath(prefix, c.name)
	var result []NodeState
	if !c.isDefault() {
		result = append(result, c.state(path))
	}
	for _, ch := range c.children {
		result = append(result, ch.SaveState(path)...)
	}
	return result
}

func (c *Cluster) FindByPath(path []string) Node {
	if len(path) == 0 {
		return c
	}
	if ch, ok := findChild(c.children, path[0]); ok {
		return ch.FindByPath(path[1:])
	}
	return nil
}
