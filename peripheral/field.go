package peripheral

import (
	"context"
	"fmt"
	"strings"

	"omibyte.io/regview/bitutil"
	"omibyte.io/regview/memio"
)

type FieldOptions struct {
	Name        string
	Description string
	Offset      uint
	Width       uint
	AccessType  AccessType
	Enumeration Enumeration
}

// Field is a bit range of a register.
type Field struct {
	node
	register    *Register
	offset      uint
	width       uint
	accessType  AccessType
	enumeration Enumeration
}

// NewField creates a field and adds it to reg. The access type is narrowed
// by the access of the register.
func NewField(reg *Register, opts FieldOptions) *Field {
	f := &Field{
		node:        node{name: opts.Name, description: opts.Description},
		register:    reg,
		offset:      opts.Offset,
		width:       opts.Width,
		accessType:  narrow(reg.AccessType(), opts.AccessType),
		enumeration: opts.Enumeration,
	}
	reg.addField(f)
	return f
}

func (f *Field) Offset() uint { return f.offset }
func (f *Field) Width() uint { return f.width }
func (f *Field) AccessType() AccessType { return f.accessType }
func (f *Field) Enumeration() Enumeration { return f.enumeration }
func (f *Field) Register() *Register { return f.register }
func (f *Field) Parent() Node { return f.register }
func (f *Field) Peripheral() *Peripheral { return f.register.Peripheral() }
func (f *Field) Children() []Node { return nil }

func (f *Field) Value() uint64 {
	return f.register.ExtractBits(f.offset, f.width)
}

// Format returns Auto when neither the field nor any parent sets a format.
// Auto renders fields of four bits or more in hex and narrower ones in binary.
func (f *Field) Format() NumberFormat {
	for n := Node(f); n != nil; n = n.Parent() {
		if format := n.OwnFormat(); format != Auto {
			return format
		}
	}
	return Auto
}

func (f *Field) Label() string {
	if f.width == 1 {
		return fmt.Sprintf("%s [%d]", f.name, f.offset)
	}
	return fmt.Sprintf("%s [%d:%d]", f.name, f.offset+f.width-1, f.offset)
}

// UpdateData is a no-op. Fields decode from their register on demand.
func (f *Field) UpdateData(context.Context, memio.Reader) (bool, error) {
	return false, nil
}

func (f *Field) formatNumber(format NumberFormat, group bool) string {
	v := f.Value()
	if format == Auto {
		format = Binary
		if f.width >= 4 {
			format = Hex
		}
	}
	switch format {
	case Decimal:
		return bitutil.DecimalFormat(v)
	case Binary:
		return bitutil.BinaryFormat(v, int(f.width), true, group)
	default:
		return bitutil.HexFormat(v, bitutil.HexDigits(f.width), true)
	}
}

// FormattedValue renders the value. A field with an enumeration shows the
// name of the value next to the number.
func (f *Field) FormattedValue(format NumberFormat) string {
	if !f.accessType.CanRead() {
		return "(Write Only)"
	}
	s := f.formatNumber(format, true)
	if f.enumeration == nil {
		return s
	}
	if ev, ok := f.enumeration[f.Value()]; ok {
		return fmt.Sprintf("%s (%s)", ev.Name, s)
	}
	return fmt.Sprintf("Unknown enumeration value (%s)", s)
}

func (f *Field) CopyValue() string {
	if f.enumeration != nil {
		if ev, ok := f.enumeration[f.Value()]; ok {
			return ev.Name
		}
	}
	return f.formatNumber(f.Format(), false)
}

// ParseValue accepts an enumeration name for enumerated fields and a number
// otherwise.
func (f *Field) ParseValue(input string) (uint64, error) {
	input = strings.TrimSpace(input)
	if f.enumeration != nil {
		ev, ok := f.enumeration.Lookup(input)
		if !ok {
			return 0, fmt.Errorf("field %s: %w: %q", f.name, ErrUnknownEnumeration, input)
		}
		return ev.Value, nil
	}

	v, err := bitutil.ParseInteger(input)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w: %w", f.name, ErrInvalidValue, err)
	}
	if !bitutil.Fits(v, f.width) {
		return 0, fmt.Errorf("field %s: %w: %s does not fit in %d bits", f.name, ErrValueOutOfRange, input, f.width)
	}
	return v, nil
}

// Write replaces the bits of the field in the current register value and
// writes the whole register.
func (f *Field) Write(ctx context.Context, s memio.Session, value uint64) error {
	if !f.accessType.CanWrite() {
		return fmt.Errorf("field %s: %w", f.name, ErrReadOnly)
	}
	return f.register.UpdateBits(ctx, s, f.offset, f.width, value)
}

func (f *Field) WriteString(ctx context.Context, s memio.Session, input string) error {
	v, err := f.ParseValue(input)
	if err != nil {
		return err
	}
	return f.Write(ctx, s, v)
}

// SaveState only records a format. Fields have no children to expand.
func (f *Field) SaveState(prefix string) []NodeState {
	if f.format == Auto && !f.pinned {
		return nil
	}
	return []NodeState{f.state(joinPath(prefix, f.name))}
}

func (f *Field) FindByPath(path []string) Node {
	if len(path) == 0 {
		return f
	}
	return nil
}
