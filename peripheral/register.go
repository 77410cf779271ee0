package peripheral

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"omibyte.io/regview/bitutil"
	"omibyte.io/regview/memio"
	"omibyte.io/regview/memrange"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+$`)

type RegisterOptions struct {
	Name          string
	Description   string
	AddressOffset uint64

	// Zero values inherit from the parent.
	AccessType AccessType
	Size       uint
	ResetValue *uint64
}

// Register is a fixed width value decoded from the buffer of its peripheral.
type Register struct {
	node
	parent     Container
	offset     uint64
	accessType AccessType
	size       uint
	resetValue uint64
	hexLength  int

	hexPattern    *regexp.Regexp
	binaryPattern *regexp.Regexp

	value  uint64
	fields []*Field
}

// NewRegister creates a register and adds it to parent. The register starts
// out holding its reset value.
func NewRegister(parent Container, opts RegisterOptions) *Register {
	r := &Register{
		node:       node{name: opts.Name, description: opts.Description},
		parent:     parent,
		offset:     opts.AddressOffset,
		accessType: opts.AccessType,
		size:       opts.Size,
		resetValue: parent.ResetValue(),
	}
	if r.accessType == Inherit {
		r.accessType = parent.AccessType()
	}
	if r.size == 0 {
		r.size = parent.Size()
	}
	if opts.ResetValue != nil {
		r.resetValue = *opts.ResetValue
	}

	r.hexLength = bitutil.HexDigits(r.size)
	r.hexPattern = regexp.MustCompile(fmt.Sprintf(`(?i)^0x[0-9a-f]{1,%d}$`, r.hexLength))
	r.binaryPattern = regexp.MustCompile(fmt.Sprintf(`(?i)^0b[01]{1,%d}$`, r.size))
	r.value = r.resetValue

	parent.addChild(r)
	return r
}

func (r *Register) Offset() uint64 { return r.offset }
func (r *Register) AccessType() AccessType { return r.accessType }
func (r *Register) Size() uint { return r.size }
func (r *Register) ResetValue() uint64 { return r.resetValue }
func (r *Register) Value() uint64 { return r.value }
func (r *Register) Parent() Node { return r.parent }
func (r *Register) Peripheral() *Peripheral { return r.parent.Peripheral() }
func (r *Register) Fields() []*Field { return r.fields }
func (r *Register) Children() []Node { return toNodes(r.fields) }

// Address returns the absolute address of the register.
func (r *Register) Address() uint64 {
	return r.parent.Address(r.offset)
}

// PeripheralOffset returns the offset of the register from the peripheral
// base address.
func (r *Register) PeripheralOffset() uint64 {
	return r.parent.PeripheralOffset(r.offset)
}

func (r *Register) Format() NumberFormat {
	if r.format != Auto {
		return r.format
	}
	return r.parent.Format()
}

func (r *Register) Label() string {
	return fmt.Sprintf("%s @ %s", r.name, bitutil.HexFormat(r.PeripheralOffset(), 0, true))
}

// Reset sets the value back to the reset value without touching the target.
func (r *Register) Reset() {
	r.value = r.resetValue
}

func (r *Register) addField(f *Field) {
	r.fields = append(r.fields, f)
	slices.SortStableFunc(r.fields, func(a, b *Field) bool {
		return a.offset < b.offset
	})
}

func (r *Register) collectRanges(acc []memrange.AddrRange) []memrange.AddrRange {
	return append(acc, memrange.New(r.offset, uint64(r.size/8)))
}

func validWidth(n uint) bool {
	return n == 1 || n == 2 || n == 4
}

// UpdateData decodes the register from the buffer of its peripheral. On error
// the previous value is kept.
func (r *Register) UpdateData(ctx context.Context, _ memio.Reader) (bool, error) {
	width := r.size / 8
	if !validWidth(width) {
		return false, fmt.Errorf("register %s: %w: %d bits", r.name, ErrInvalidSize, r.size)
	}
	b := r.parent.Bytes(r.offset, uint64(width))
	if b == nil {
		return false, fmt.Errorf("register %s: %w", r.name, ErrNoData)
	}

	var v uint64
	for i := int(width) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	r.value = v
	return true, nil
}

// ExtractBits returns width bits of the current value at offset.
func (r *Register) ExtractBits(offset, width uint) uint64 {
	return bitutil.ExtractBits(r.value, offset, width)
}

func (r *Register) FormattedValue(format NumberFormat) string {
	return r.formatValue(format, true)
}

func (r *Register) CopyValue() string {
	return r.formatValue(r.Format(), false)
}

func (r *Register) formatValue(format NumberFormat, group bool) string {
	if !r.accessType.CanRead() {
		return "(Write Only)"
	}
	switch format {
	case Decimal:
		return bitutil.DecimalFormat(r.value)
	case Binary:
		return bitutil.BinaryFormat(r.value, r.hexLength*4, true, group)
	default:
		return bitutil.HexFormat(r.value, r.hexLength, true)
	}
}

// ParseValue accepts 0x hex or 0b binary no wider than the register, or a
// decimal value that fits.
func (r *Register) ParseValue(input string) (uint64, error) {
	input = strings.TrimSpace(input)
	switch {
	case r.hexPattern.MatchString(input):
		return strconv.ParseUint(input[2:], 16, 64)
	case r.binaryPattern.MatchString(input):
		return strconv.ParseUint(input[2:], 2, 64)
	case decimalPattern.MatchString(input):
		v, err := strconv.ParseUint(input, 10, 64)
		if err != nil || !bitutil.Fits(v, r.size) {
			return 0, fmt.Errorf("%w: %s does not fit in %d bits", ErrValueOutOfRange, input, r.size)
		}
		return v, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidValue, input)
}

// Write stores value in the target and re-reads the owning peripheral.
// Nothing is written when the value does not fit.
func (r *Register) Write(ctx context.Context, s memio.Session, value uint64) error {
	if !r.accessType.CanWrite() {
		return fmt.Errorf("register %s: %w", r.name, ErrReadOnly)
	}
	width := r.size / 8
	if !validWidth(width) {
		return fmt.Errorf("register %s: %w: %d bits", r.name, ErrInvalidSize, r.size)
	}
	if !bitutil.Fits(value, r.size) {
		return fmt.Errorf("register %s: %w: %#x", r.name, ErrValueOutOfRange, value)
	}

	data := make([]byte, width)
	for i := range data {
		data[i] = byte(value >> (8 * i))
	}
	if err := memio.WriteBytes(ctx, s, r.Address(), data); err != nil {
		return fmt.Errorf("register %s: %w", r.name, err)
	}
	r.value = value

	_, err := r.Peripheral().UpdateData(ctx, s)
	return err
}

// WriteString parses input and writes it.
func (r *Register) WriteString(ctx context.Context, s memio.Session, input string) error {
	v, err := r.ParseValue(input)
	if err != nil {
		return err
	}
	return r.Write(ctx, s, v)
}

// UpdateBits replaces width bits at offset and writes the whole register.
func (r *Register) UpdateBits(ctx context.Context, s memio.Session, offset, width uint, value uint64) error {
	if !bitutil.Fits(value, width) {
		return fmt.Errorf("%w: %#x does not fit in %d bits", ErrValueOutOfRange, value, width)
	}
	return r.Write(ctx, s, bitutil.InsertBits(r.value, offset, width, value))
}

func (r *Register) SaveState(prefix string) []NodeState {
	path := joinPath(prefix, r.name)
	var result []NodeState
	if !r.isDefault() {
		result = append(result, r.state(path))
	}
	for _, f := range r.fields {
		result = append(result, f.SaveState(path)...)
	}
	return result
}

func (r *Register) FindByPath(path []string) Node {
	switch len(path) {
	case 0:
		return r
	case 1:
		if f, ok := findChild(r.fields, path[0]); ok {
			return f
		}
	}
	return nil
}

// Field returns the field with the given name.
func (r *Register) Field(name string) (*Field, error) {
	if f, ok := findChild(r.fields, name); ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: field %s.%s", ErrNotFound, r.name, name)
}
