package svd

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"omibyte.io/regview/bitutil"
	"omibyte.io/regview/peripheral"
)

var bitRangePattern = regexp.MustCompile(`^\[\s*(\d+)\s*:\s*(\d+)\s*\]$`)

// Options are applied to every peripheral that is built.
type Options struct {
	GapThreshold int
	MaxChunk     uint64
	Concurrency  int
}

// Device is a parsed device description.
type Device struct {
	Name        string
	Description string
	Vendor      string
	Peripherals []*peripheral.Peripheral
}

// Peripheral returns the peripheral with the given name.
func (d *Device) Peripheral(name string) (*peripheral.Peripheral, bool) {
	for _, p := range d.Peripherals {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// ParseContext holds the state of one parse. Enumerations are named in a
// namespace shared by the whole document. The namespace is reset at the start
// of every parse.
type ParseContext struct {
	opts         Options
	enumerations map[string]peripheral.Enumeration
}

func NewParseContext(opts Options) *ParseContext {
	return &ParseContext{opts: opts}
}

// Parse reads a device description and builds its peripherals. Every
// peripheral has its read plan computed.
func Parse(r io.Reader, opts Options) (*Device, error) {
	return NewParseContext(opts).Parse(r)
}

func ParseFile(path string, opts Options) (*Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, opts)
}

func (ctx *ParseContext) Parse(r io.Reader) (*Device, error) {
	ctx.enumerations = map[string]peripheral.Enumeration{}

	var dev DeviceElement
	if err := xml.NewDecoder(r).Decode(&dev); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return ctx.Build(&dev)
}

// Build builds the peripherals of an already decoded device description.
func (ctx *ParseContext) Build(dev *DeviceElement) (*Device, error) {
	if ctx.enumerations == nil {
		ctx.enumerations = map[string]peripheral.Enumeration{}
	}

	elements, err := resolve("peripheral", dev.Peripherals.Elements,
		func(p PeripheralElement) string { return p.Name },
		func(p PeripheralElement) string { return p.DerivedFrom },
		mergePeripheral)
	if err != nil {
		return nil, err
	}

	result := &Device{
		Name:        dev.Name,
		Description: strings.TrimSpace(dev.Description),
		Vendor:      dev.Vendor,
	}
	for i := range elements {
		p, err := ctx.buildPeripheral(dev.RegisterProperties, &elements[i])
		if err != nil {
			return nil, err
		}
		result.Peripherals = append(result.Peripherals, p)
	}
	return result, nil
}

func (ctx *ParseContext) buildPeripheral(defaults RegisterProperties, e *PeripheralElement) (*peripheral.Peripheral, error) {
	if e.BaseAddress == nil {
		return nil, fmt.Errorf("%w: peripheral %s has no base address", ErrMissingOffset, e.Name)
	}

	props := e.RegisterProperties.inherit(defaults)
	access, err := parseAccess(props.Access)
	if err != nil {
		return nil, fmt.Errorf("peripheral %s: %w", e.Name, err)
	}

	var totalLength uint64
	for _, block := range e.AddressBlocks {
		if end := uint64(block.Offset + block.Size); end > totalLength {
			totalLength = end
		}
	}

	opts := peripheral.Options{
		Name:         e.Name,
		Description:  strings.TrimSpace(e.Description),
		GroupName:    e.GroupName,
		BaseAddress:  uint64(*e.BaseAddress),
		TotalLength:  totalLength,
		AccessType:   access,
		GapThreshold: ctx.opts.GapThreshold,
		MaxChunk:     ctx.opts.MaxChunk,
		Concurrency:  ctx.opts.Concurrency,
	}
	if props.Size != nil {
		opts.Size = uint(*props.Size)
	}
	if props.ResetValue != nil {
		opts.ResetValue = uint64(*props.ResetValue)
	}

	p := peripheral.New(opts)
	if err := ctx.buildContainer(p, e.Registers.Registers, e.Registers.Clusters, e.Name); err != nil {
		return nil, err
	}
	p.CollectRanges()
	return p, nil
}

func (ctx *ParseContext) buildContainer(parent peripheral.Container, registers []RegisterElement, clusters []ClusterElement, path string) error {
	registers, err := resolve("register", registers,
		func(r RegisterElement) string { return r.Name },
		func(r RegisterElement) string { return r.DerivedFrom },
		mergeRegister)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	clusters, err = resolve("cluster", clusters,
		func(c ClusterElement) string { return c.Name },
		func(c ClusterElement) string { return c.DerivedFrom },
		mergeCluster)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for i := range registers {
		if err := ctx.buildRegister(parent, &registers[i], path); err != nil {
			return err
		}
	}
	for i := range clusters {
		if err := ctx.buildCluster(parent, &clusters[i], path); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *ParseContext) buildCluster(parent peripheral.Container, e *ClusterElement, path string) error {
	if e.AddressOffset == nil {
		return fmt.Errorf("%w: cluster %s.%s has no address offset", ErrMissingOffset, path, e.Name)
	}
	access, err := parseAccess(e.Access)
	if err != nil {
		return fmt.Errorf("cluster %s.%s: %w", path, e.Name, err)
	}
	names, err := expandDim(e.Name, e.DimElement)
	if err != nil {
		return fmt.Errorf("cluster %s.%s: %w", path, e.Name, err)
	}

	for i, name := range names {
		opts := peripheral.ClusterOptions{
			Name:          name,
			Description:   strings.TrimSpace(e.Description),
			AddressOffset: uint64(*e.AddressOffset) + uint64(i)*uint64(e.DimIncrement),
			AccessType:    access,
			ResetValue:    uint64Ptr(e.ResetValue),
		}
		if e.Size != nil {
			opts.Size = uint(*e.Size)
		}
		c := peripheral.NewCluster(parent, opts)
		if err := ctx.buildContainer(c, e.Registers, e.Clusters, path+"."+name); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *ParseContext) buildRegister(parent peripheral.Container, e *RegisterElement, path string) error {
	if e.AddressOffset == nil {
		return fmt.Errorf("%w: register %s.%s has no address offset", ErrMissingOffset, path, e.Name)
	}
	access, err := parseAccess(e.Access)
	if err != nil {
		return fmt.Errorf("register %s.%s: %w", path, e.Name, err)
	}
	names, err := expandDim(e.Name, e.DimElement)
	if err != nil {
		return fmt.Errorf("register %s.%s: %w", path, e.Name, err)
	}

	for i, name := range names {
		opts := peripheral.RegisterOptions{
			Name:          name,
			Description:   strings.TrimSpace(e.Description),
			AddressOffset: uint64(*e.AddressOffset) + uint64(i)*uint64(e.DimIncrement),
			AccessType:    access,
			ResetValue:    uint64Ptr(e.ResetValue),
		}
		if e.Size != nil {
			opts.Size = uint(*e.Size)
		}
		reg := peripheral.NewRegister(parent, opts)
		if err := ctx.buildFields(reg, e.Fields.Elements, path+"."+name); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *ParseContext) buildFields(reg *peripheral.Register, fields []FieldElement, path string) error {
	for i := range fields {
		e := &fields[i]
		offset, width, err := bitPosition(e)
		if err != nil {
			return fmt.Errorf("field %s.%s: %w", path, e.Name, err)
		}
		access, err := parseAccess(e.Access)
		if err != nil {
			return fmt.Errorf("field %s.%s: %w", path, e.Name, err)
		}
		enum, err := ctx.enumeration(e.EnumeratedValues)
		if err != nil {
			return fmt.Errorf("field %s.%s: %w", path, e.Name, err)
		}
		names, err := expandDim(e.Name, e.DimElement)
		if err != nil {
			return fmt.Errorf("field %s.%s: %w", path, e.Name, err)
		}

		for j, name := range names {
			peripheral.NewField(reg, peripheral.FieldOptions{
				Name:        name,
				Description: strings.TrimSpace(e.Description),
				Offset:      offset + uint(j)*uint(e.DimIncrement),
				Width:       width,
				AccessType:  access,
				Enumeration: enum,
			})
		}
	}
	return nil
}

// enumeration builds the enumeration of a field from the first set of values
// that applies to reads. Named sets are added to the namespace of the parse.
func (ctx *ParseContext) enumeration(sets []EnumeratedValuesElement) (peripheral.Enumeration, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	e := &sets[0]
	for i := range sets {
		if sets[i].Usage != "write" {
			e = &sets[i]
			break
		}
	}

	if len(e.DerivedFrom) > 0 {
		ref := e.DerivedFrom
		if dot := strings.LastIndex(ref, "."); dot >= 0 {
			ref = ref[dot+1:]
		}
		enum, ok := ctx.enumerations[ref]
		if !ok {
			return nil, fmt.Errorf("%w: enumeration %s", ErrUnknownDerivation, e.DerivedFrom)
		}
		return enum, nil
	}

	enum := peripheral.Enumeration{}
	for _, v := range e.Elements {
		if v.IsDefault {
			continue
		}
		enum[uint64(v.Value)] = peripheral.EnumeratedValue{
			Name:        v.Name,
			Description: strings.TrimSpace(v.Description),
			Value:       uint64(v.Value),
		}
	}
	if len(e.Name) > 0 {
		ctx.enumerations[e.Name] = enum
	}
	return enum, nil
}

// bitPosition returns the offset and width of a field given either as
// bitOffset and bitWidth, as lsb and msb or as a [msb:lsb] bit range.
func bitPosition(e *FieldElement) (uint, uint, error) {
	switch {
	case e.BitOffset != nil:
		width := uint(1)
		if e.BitWidth != nil {
			width = uint(*e.BitWidth)
		}
		return uint(*e.BitOffset), width, nil
	case e.LSB != nil && e.MSB != nil:
		if *e.MSB < *e.LSB {
			return 0, 0, fmt.Errorf("%w: msb %d below lsb %d", ErrMissingWidth, *e.MSB, *e.LSB)
		}
		return uint(*e.LSB), uint(*e.MSB-*e.LSB) + 1, nil
	case len(e.BitRange) > 0:
		m := bitRangePattern.FindStringSubmatch(strings.TrimSpace(e.BitRange))
		if m == nil {
			return 0, 0, fmt.Errorf("%w: bit range %q", ErrMissingWidth, e.BitRange)
		}
		msb, _ := strconv.Atoi(m[1])
		lsb, _ := strconv.Atoi(m[2])
		if msb < lsb {
			return 0, 0, fmt.Errorf("%w: bit range %q", ErrMissingWidth, e.BitRange)
		}
		return uint(lsb), uint(msb-lsb) + 1, nil
	}
	return 0, 0, ErrMissingWidth
}

// expandDim returns the names of the instances of an element. Without a dim
// the element has a single instance. Otherwise %s in the name is replaced by
// each index.
func expandDim(name string, dim DimElement) ([]string, error) {
	if dim.Dim == nil {
		return []string{name}, nil
	}
	if *dim.Dim == 0 {
		return nil, fmt.Errorf("%w: dim of %s is zero", ErrInvalidDim, name)
	}
	if !strings.Contains(name, "%s") {
		return nil, fmt.Errorf("%w: %s has a dim but no %%s", ErrInvalidDim, name)
	}

	indices, err := bitutil.ParseDimIndex(dim.DimIndex, int(*dim.Dim))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDim, err)
	}
	names := make([]string, len(indices))
	for i, index := range indices {
		names[i] = strings.ReplaceAll(name, "%s", index)
	}
	return names, nil
}

func parseAccess(s string) (peripheral.AccessType, error) {
	switch strings.TrimSpace(s) {
	case "":
		return peripheral.Inherit, nil
	case "read-only":
		return peripheral.ReadOnly, nil
	case "write-only", "writeOnce":
		return peripheral.WriteOnly, nil
	case "read-write", "read-writeOnce":
		return peripheral.ReadWrite, nil
	}
	return peripheral.Inherit, fmt.Errorf("%w: %q", ErrInvalidAccess, s)
}
