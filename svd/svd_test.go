package svd

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/exp/slices"

	"omibyte.io/regview/memrange"
	"omibyte.io/regview/peripheral"
)

func parseSample(t *testing.T) *Device {
	t.Helper()
	dev, err := ParseFile("testdata/sample.svd", Options{})
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	return dev
}

func find(t *testing.T, dev *Device, path string) peripheral.Node {
	t.Helper()
	n, err := peripheral.Find(dev.Peripherals, path)
	if err != nil {
		t.Fatalf("Find(%q) error = %v", path, err)
	}
	return n
}

func TestParseSample(t *testing.T) {
	dev := parseSample(t)
	if dev.Name != "OM32F1" || dev.Vendor != "Omibyte" {
		t.Errorf("device = %q by %q", dev.Name, dev.Vendor)
	}

	var names []string
	for _, p := range dev.Peripherals {
		names = append(names, p.Name())
	}
	if want := []string{"GPIOA", "GPIOB", "TIM2"}; !slices.Equal(names, want) {
		t.Fatalf("peripherals = %v, want %v", names, want)
	}

	gpiob, _ := dev.Peripheral("GPIOB")
	if gpiob.BaseAddress() != 0x40020400 || gpiob.TotalLength() != 0x400 || gpiob.GroupName() != "GPIO" {
		t.Errorf("GPIOB = %#x+%#x in %q", gpiob.BaseAddress(), gpiob.TotalLength(), gpiob.GroupName())
	}

	moder := find(t, dev, "GPIOB.MODER").(*peripheral.Register)
	if len(moder.Fields()) != 16 {
		t.Errorf("MODER has %d fields, want 16", len(moder.Fields()))
	}
	if moder.ResetValue() != 0xa8000000 || moder.Value() != 0xa8000000 {
		t.Errorf("MODER = %#x, reset %#x", moder.Value(), moder.ResetValue())
	}
	mode15 := find(t, dev, "GPIOB.MODER.MODE15").(*peripheral.Field)
	if mode15.Offset() != 30 || mode15.Width() != 2 {
		t.Errorf("MODE15 at %d width %d", mode15.Offset(), mode15.Width())
	}
	if got := mode15.FormattedValue(mode15.Format()); got != "Alternate (0b10)" {
		t.Errorf("MODE15 = %q", got)
	}
}

func TestParseFieldsAndAccess(t *testing.T) {
	dev := parseSample(t)

	tests := []struct {
		path   string
		offset uint
		width  uint
		access peripheral.AccessType
	}{
		{path: "GPIOA.IDR.IDR", offset: 0, width: 16, access: peripheral.ReadOnly},
		{path: "GPIOA.ODR.ODR", offset: 0, width: 16, access: peripheral.ReadWrite},
		{path: "TIM2.CR1.CEN", offset: 0, width: 1, access: peripheral.ReadWrite},
		{path: "TIM2.CR1.CMS", offset: 5, width: 2, access: peripheral.ReadWrite},
	}

	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			f := find(t, dev, test.path).(*peripheral.Field)
			if f.Offset() != test.offset || f.Width() != test.width || f.AccessType() != test.access {
				t.Errorf("field at %d width %d %v, want %d width %d %v",
					f.Offset(), f.Width(), f.AccessType(), test.offset, test.width, test.access)
			}
		})
	}

	bsrr := find(t, dev, "GPIOA.BSRR").(*peripheral.Register)
	if bsrr.AccessType() != peripheral.WriteOnly {
		t.Errorf("BSRR access = %v, want write-only", bsrr.AccessType())
	}
	if cr1 := find(t, dev, "TIM2.CR1").(*peripheral.Register); cr1.Size() != 16 {
		t.Errorf("CR1 size = %d, want 16", cr1.Size())
	}
}

func TestParseDimAndDerivedRegisters(t *testing.T) {
	dev := parseSample(t)

	ccr2 := find(t, dev, "TIM2.CCR2").(*peripheral.Register)
	if ccr2.Address() != 0x40000038 {
		t.Errorf("CCR2 address = %#x", ccr2.Address())
	}
	if _, err := peripheral.Find(dev.Peripherals, "TIM2.CCR0"); err == nil {
		t.Error("CCR0 exists, dim index starts at 1")
	}

	arr := find(t, dev, "TIM2.ARR").(*peripheral.Register)
	if arr.ResetValue() != 1 || arr.PeripheralOffset() != 0x2c {
		t.Errorf("ARR reset %#x at %#x", arr.ResetValue(), arr.PeripheralOffset())
	}

	data := find(t, dev, "TIM2.CH1.DATA").(*peripheral.Register)
	if data.PeripheralOffset() != 0x114 || data.AccessType() != peripheral.WriteOnly {
		t.Errorf("CH1.DATA at %#x %v", data.PeripheralOffset(), data.AccessType())
	}
}

func TestParseEnumerations(t *testing.T) {
	dev := parseSample(t)

	cms := find(t, dev, "TIM2.CR1.CMS").(*peripheral.Field)
	if v, ok := cms.Enumeration()[2]; !ok || v.Name != "Center" {
		t.Errorf("CMS[2] = %v, %v", v, ok)
	}
	dir2 := find(t, dev, "TIM2.CR2.DIR2").(*peripheral.Field)
	if v, ok := dir2.Enumeration().Lookup("Down"); !ok || v.Value != 1 {
		t.Errorf("DIR2 Down = %v, %v", v, ok)
	}
}

func TestParseReadPlan(t *testing.T) {
	dev := parseSample(t)
	tim2, _ := dev.Peripheral("TIM2")

	const base = 0x40000000
	want := []memrange.AddrRange{
		memrange.New(base, 2),
		memrange.New(base+0x4, 2),
		memrange.New(base+0x24, 4),
		memrange.New(base+0x2c, 4),
		memrange.New(base+0x34, 16),
		memrange.New(base+0x100, 8),
		memrange.New(base+0x110, 8),
	}
	if got := tim2.AddrRanges(); !slices.Equal(got, want) {
		t.Errorf("AddrRanges() = %v, want %v", got, want)
	}
}

const document = `<device><name>D</name><peripherals>%s</peripherals></device>`

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name        string
		peripherals string
		err         error
	}{
		{
			name:        "missing base address",
			peripherals: `<peripheral><name>P</name></peripheral>`,
			err:         ErrMissingOffset,
		},
		{
			name:        "missing register offset",
			peripherals: `<peripheral><name>P</name><baseAddress>0</baseAddress><registers><register><name>R</name></register></registers></peripheral>`,
			err:         ErrMissingOffset,
		},
		{
			name: "missing field position",
			peripherals: `<peripheral><name>P</name><baseAddress>0</baseAddress><registers><register><name>R</name><addressOffset>0</addressOffset>
				<fields><field><name>F</name></field></fields></register></registers></peripheral>`,
			err: ErrMissingWidth,
		},
		{
			name: "reversed bit range",
			peripherals: `<peripheral><name>P</name><baseAddress>0</baseAddress><registers><register><name>R</name><addressOffset>0</addressOffset>
				<fields><field><name>F</name><bitRange>[1:3]</bitRange></field></fields></register></registers></peripheral>`,
			err: ErrMissingWidth,
		},
		{
			name: "dim index mismatch",
			peripherals: `<peripheral><name>P</name><baseAddress>0</baseAddress><registers>
				<register><dim>3</dim><dimIncrement>4</dimIncrement><dimIndex>A,B</dimIndex><name>R%s</name><addressOffset>0</addressOffset></register>
				</registers></peripheral>`,
			err: ErrInvalidDim,
		},
		{
			name: "dim without placeholder",
			peripherals: `<peripheral><name>P</name><baseAddress>0</baseAddress><registers>
				<register><dim>2</dim><dimIncrement>4</dimIncrement><name>R</name><addressOffset>0</addressOffset></register>
				</registers></peripheral>`,
			err: ErrInvalidDim,
		},
		{
			name:        "unknown peripheral",
			peripherals: `<peripheral derivedFrom="NOPE"><name>P</name><baseAddress>0</baseAddress></peripheral>`,
			err:         ErrUnknownDerivation,
		},
		{
			name: "derivation cycle",
			peripherals: `<peripheral derivedFrom="B"><name>A</name><baseAddress>0</baseAddress></peripheral>
				<peripheral derivedFrom="A"><name>B</name><baseAddress>0x100</baseAddress></peripheral>`,
			err: ErrDerivationCycle,
		},
		{
			name:        "derived from itself",
			peripherals: `<peripheral derivedFrom="A"><name>A</name><baseAddress>0</baseAddress></peripheral>`,
			err:         ErrDerivationCycle,
		},
		{
			name: "unknown register",
			peripherals: `<peripheral><name>P</name><baseAddress>0</baseAddress><registers>
				<register derivedFrom="P.NOPE"><name>R</name><addressOffset>0</addressOffset></register>
				</registers></peripheral>`,
			err: ErrUnknownDerivation,
		},
		{
			name: "unknown enumeration",
			peripherals: `<peripheral><name>P</name><baseAddress>0</baseAddress><registers><register><name>R</name><addressOffset>0</addressOffset>
				<fields><field><name>F</name><bitOffset>0</bitOffset><enumeratedValues derivedFrom="NOPE"/></field></fields>
				</register></registers></peripheral>`,
			err: ErrUnknownDerivation,
		},
		{
			name:        "invalid access",
			peripherals: `<peripheral><name>P</name><baseAddress>0</baseAddress><access>sometimes</access></peripheral>`,
			err:         ErrInvalidAccess,
		},
		{
			name:        "invalid number",
			peripherals: `<peripheral><name>P</name><baseAddress>0xZZ</baseAddress></peripheral>`,
			err:         ErrParse,
		},
		{
			name:        "malformed document",
			peripherals: `<peripheral><name>P</name>`,
			err:         ErrParse,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(fmt.Sprintf(document, test.peripherals)), Options{})
			if !errors.Is(err, test.err) {
				t.Fatalf("Parse() error = %v, want %v", err, test.err)
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("Parse() error = %v is not a parse error", err)
			}
		})
	}
}

func TestParseContextResetsEnumerations(t *testing.T) {
	first := `<peripheral><name>P</name><baseAddress>0</baseAddress><registers><register><name>R</name><addressOffset>0</addressOffset>
		<fields><field><name>F</name><bitOffset>0</bitOffset><enumeratedValues><name>E</name>
		<enumeratedValue><name>ON</name><value>1</value></enumeratedValue></enumeratedValues></field></fields>
		</register></registers></peripheral>`
	second := `<peripheral><name>Q</name><baseAddress>0</baseAddress><registers><register><name>R</name><addressOffset>0</addressOffset>
		<fields><field><name>F</name><bitOffset>0</bitOffset><enumeratedValues derivedFrom="E"/></field></fields>
		</register></registers></peripheral>`

	ctx := NewParseContext(Options{})
	if _, err := ctx.Parse(strings.NewReader(fmt.Sprintf(document, first+second))); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := ctx.Parse(strings.NewReader(fmt.Sprintf(document, second))); !errors.Is(err, ErrUnknownDerivation) {
		t.Errorf("Parse() error = %v, want %v", err, ErrUnknownDerivation)
	}
}

func TestDerivedPeripheralOverridesRegisters(t *testing.T) {
	peripherals := `<peripheral><name>A</name><baseAddress>0x1000</baseAddress><access>read-only</access><registers>
			<register><name>CTRL</name><addressOffset>0</addressOffset></register>
			<register><name>STAT</name><addressOffset>4</addressOffset></register>
		</registers></peripheral>
		<peripheral derivedFrom="A"><name>B</name><baseAddress>0x2000</baseAddress><registers>
			<register><name>STAT</name><addressOffset>8</addressOffset><size>16</size></register>
		</registers></peripheral>`

	dev, err := Parse(strings.NewReader(fmt.Sprintf(document, peripherals)), Options{GapThreshold: 8})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	b, _ := dev.Peripheral("B")
	if b.AccessType() != peripheral.ReadOnly {
		t.Errorf("B access = %v, want read-only", b.AccessType())
	}
	stat := find(t, dev, "B.STAT").(*peripheral.Register)
	if stat.PeripheralOffset() != 8 || stat.Size() != 16 {
		t.Errorf("B.STAT at %d size %d", stat.PeripheralOffset(), stat.Size())
	}
	if _, err := peripheral.Find(dev.Peripherals, "B.CTRL"); err != nil {
		t.Errorf("B.CTRL missing: %v", err)
	}
	want := []memrange.AddrRange{memrange.New(0x2000, 10)}
	if got := b.AddrRanges(); !slices.Equal(got, want) {
		t.Errorf("AddrRanges() = %v, want %v", got, want)
	}
}

func TestEnumValue(t *testing.T) {
	tests := []struct {
		input string
		want  uint64
	}{
		{input: "5", want: 5},
		{input: "0x1F", want: 0x1f},
		{input: "#101", want: 5},
		{input: "#1x1", want: 5},
		{input: "#xx1", want: 1},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			var v struct {
				Value EnumValue `xml:"value"`
			}
			doc := "<e><value>" + test.input + "</value></e>"
			if err := xml.Unmarshal([]byte(doc), &v); err != nil {
				t.Fatalf("unmarshal error = %v", err)
			}
			if uint64(v.Value) != test.want {
				t.Errorf("value = %d, want %d", v.Value, test.want)
			}
		})
	}
}
