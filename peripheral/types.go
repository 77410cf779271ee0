package peripheral

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type AccessType int

const (
	// Inherit takes the access type of the parent.
	Inherit AccessType = iota
	ReadOnly
	ReadWrite
	WriteOnly
)

func (a AccessType) CanRead() bool {
	return a == ReadOnly || a == ReadWrite
}

func (a AccessType) CanWrite() bool {
	return a == WriteOnly || a == ReadWrite
}

func (a AccessType) String() string {
	switch a {
	case ReadOnly:
		return "read-only"
	case ReadWrite:
		return "read-write"
	case WriteOnly:
		return "write-only"
	default:
		return "inherit"
	}
}

// narrow returns the effective access type of a field declared as own inside a
// register with access parent. A read-only or write-only register forces its
// fields to the same.
func narrow(parent, own AccessType) AccessType {
	switch {
	case own == Inherit:
		return parent
	case parent == ReadOnly:
		return ReadOnly
	case parent == WriteOnly:
		return WriteOnly
	default:
		return own
	}
}

// NumberFormat selects how values are rendered. Auto defers to the parent
// node, and at the top falls back to a per node default.
type NumberFormat int

const (
	Auto NumberFormat = iota
	Hex
	Decimal
	Binary
)

var formatNames = map[NumberFormat]string{
	Auto:    "auto",
	Hex:     "hex",
	Decimal: "decimal",
	Binary:  "binary",
}

func (f NumberFormat) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("NumberFormat(%d)", int(f))
}

func (f NumberFormat) MarshalText() ([]byte, error) {
	s, ok := formatNames[f]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFormat, int(f))
	}
	return []byte(s), nil
}

func (f *NumberFormat) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ParseFormat accepts the format names along with the short forms hex, dec
// and bin.
func ParseFormat(s string) (NumberFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "hex", "hexadecimal":
		return Hex, nil
	case "dec", "decimal":
		return Decimal, nil
	case "bin", "binary":
		return Binary, nil
	}
	return Auto, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// NodeState is the persisted view state of one node. Node is the dotted path
// peripheral.cluster.register.field.
type NodeState struct {
	Node     string       `yaml:"node" json:"node"`
	Expanded bool         `yaml:"expanded,omitempty" json:"expanded,omitempty"`
	Format   NumberFormat `yaml:"format" json:"format"`
	Pinned   bool         `yaml:"pinned,omitempty" json:"pinned,omitempty"`
}

type EnumeratedValue struct {
	Name        string
	Description string
	Value       uint64
}

// Enumeration maps raw field values to their names.
type Enumeration map[uint64]EnumeratedValue

// Lookup returns the value with the given name.
func (e Enumeration) Lookup(name string) (EnumeratedValue, bool) {
	for _, v := range e {
		if v.Name == name {
			return v, true
		}
	}
	return EnumeratedValue{}, false
}

// Values returns the entries ordered by value.
func (e Enumeration) Values() []EnumeratedValue {
	keys := maps.Keys(e)
	slices.Sort(keys)
	result := make([]EnumeratedValue, len(keys))
	for i, k := range keys {
		result[i] = e[k]
	}
	return result
}
