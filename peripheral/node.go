// Package peripheral models memory mapped peripherals as a tree of
// peripherals, clusters, registers and fields. A peripheral owns a byte buffer
// holding its last read. Registers and fields decode their values from it.
package peripheral

import (
	"context"
	"strings"

	"golang.org/x/exp/slices"

	"omibyte.io/regview/memio"
	"omibyte.io/regview/memrange"
)

// Node is the behaviour shared by every level of the tree.
type Node interface {
	Name() string
	Description() string

	// Parent returns nil for a peripheral.
	Parent() Node
	Children() []Node
	Peripheral() *Peripheral

	// Format returns the effective number format, resolving Auto through the
	// parents.
	Format() NumberFormat
	OwnFormat() NumberFormat
	SetFormat(NumberFormat)
	Expanded() bool
	SetExpanded(bool)
	Pinned() bool
	SetPinned(bool)

	// UpdateData refreshes the node from target memory. It reports whether an
	// update took place.
	UpdateData(ctx context.Context, r memio.Reader) (bool, error)

	// SaveState returns the state of this node and its descendants that
	// differs from the defaults. prefix is the dotted path of the parent.
	SaveState(prefix string) []NodeState

	// FindByPath resolves a path relative to this node. It returns nil when
	// nothing matches.
	FindByPath(path []string) Node

	Label() string
}

// Container is a node that holds registers and clusters.
type Container interface {
	Node

	// Bytes returns size bytes of the last read at offset into this
	// container, or nil when they are not available.
	Bytes(offset, size uint64) []byte
	// Address returns the absolute address of offset into this container.
	Address(offset uint64) uint64
	// PeripheralOffset translates offset into this container into an offset
	// from the peripheral base address.
	PeripheralOffset(offset uint64) uint64

	AccessType() AccessType
	Size() uint
	ResetValue() uint64

	addChild(c child)
}

// Valued is a node holding a numeric value: a register or a field.
type Valued interface {
	Node
	Value() uint64
	FormattedValue(format NumberFormat) string
	// CopyValue returns the value as it would be copied to the clipboard.
	CopyValue() string
	AccessType() AccessType
	ParseValue(input string) (uint64, error)
	Write(ctx context.Context, s memio.Session, value uint64) error
}

// child is a register or cluster inside a container.
type child interface {
	Node
	Offset() uint64
	collectRanges(acc []memrange.AddrRange) []memrange.AddrRange
}

// node holds the view state common to every kind of node.
type node struct {
	name        string
	description string
	expanded    bool
	pinned      bool
	format      NumberFormat
}

func (n *node) Name() string { return n.name }
func (n *node) Description() string { return n.description }
func (n *node) OwnFormat() NumberFormat { return n.format }
func (n *node) SetFormat(f NumberFormat) { n.format = f }
func (n *node) Expanded() bool { return n.expanded }
func (n *node) SetExpanded(expanded bool) { n.expanded = expanded }
func (n *node) Pinned() bool { return n.pinned }
func (n *node) SetPinned(pinned bool) { n.pinned = pinned }
func (n *node) isDefault() bool { return n.format == Auto && !n.expanded && !n.pinned }

func (n *node) state(path string) NodeState {
	return NodeState{Node: path, Expanded: n.expanded, Format: n.format, Pinned: n.pinned}
}

func joinPath(prefix, name string) string {
	if len(prefix) == 0 {
		return name
	}
	return prefix + "." + name
}

func insertSorted(children []child, c child) []child {
	children = append(children, c)
	slices.SortStableFunc(children, func(a, b child) bool {
		return a.Offset() < b.Offset()
	})
	return children
}

func findChild[T Node](children []T, name string) (T, bool) {
	for _, c := range children {
		if c.Name() == name {
			return c, true
		}
	}
	var zero T
	return zero, false
}

func toNodes[T Node](children []T) []Node {
	result := make([]Node, len(children))
	for i, c := range children {
		result[i] = c
	}
	return result
}

// Find resolves a dotted path such as "USART1.CR1.UE" among peripherals.
func Find(peripherals []*Peripheral, path string) (Node, error) {
	parts := strings.Split(path, ".")
	if p, ok := findChild(peripherals, parts[0]); ok {
		if n := p.FindByPath(parts[1:]); n != nil {
			return n, nil
		}
	}
	return nil, &PathError{Path: path}
}

// SaveStates collects the non default state of every node.
func SaveStates(peripherals []*Peripheral) []NodeState {
	var result []NodeState
	for _, p := range peripherals {
		result = append(result, p.SaveState("")...)
	}
	return result
}

// ApplyStates restores saved states by path. It returns the paths that no
// longer resolve to a node.
func ApplyStates(peripherals []*Peripheral, states []NodeState) []string {
	var missing []string
	for _, st := range states {
		n, err := Find(peripherals, st.Node)
		if err != nil {
			missing = append(missing, st.Node)
			continue
		}
		n.SetFormat(st.Format)
		n.SetExpanded(st.Expanded)
		n.SetPinned(st.Pinned)
	}
	return missing
}

// PathError reports a dotted path that does not resolve.
type PathError struct {
	Path string
}

func (e *PathError) Error() string {
	return "node not found: " + e.Path
}

func (e *PathError) Unwrap() error {
	return ErrNotFound
}
