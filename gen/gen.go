// Package gen writes Go constants describing the registers of a device: the
// address of every register and the position, mask and enumerated values of
// every field.
package gen

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/tools/imports"

	"omibyte.io/regview/bitutil"
	"omibyte.io/regview/peripheral"
	"omibyte.io/regview/svd"
)

var identifierPattern = regexp.MustCompile(`[^A-Za-z0-9_]+`)

type generator struct {
	device *svd.Device
	pkg    string
}

// Generate writes a formatted Go source file for package pkg to w.
func Generate(w io.Writer, device *svd.Device, pkg string) error {
	g := generator{device: device, pkg: pkg}
	src, err := g.source()
	if err != nil {
		return err
	}

	fname := strings.ToLower(cleanIdentifier(device.Name)) + ".go"
	buf, err := imports.Process(fname, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return fmt.Errorf("error formatting %s: %w", fname, err)
	}
	_, err = w.Write(buf)
	return err
}

func (g *generator) source() ([]byte, error) {
	var w strings.Builder
	g.writePreamble(&w)

	peripherals := slices.Clone(g.device.Peripherals)
	slices.SortStableFunc(peripherals, func(a, b *peripheral.Peripheral) bool {
		return a.BaseAddress() < b.BaseAddress()
	})
	for _, p := range peripherals {
		if err := g.generatePeripheral(&w, p); err != nil {
			return nil, err
		}
	}
	return []byte(w.String()), nil
}

func (g *generator) writePreamble(w io.Writer) {
	fmt.Fprintln(w, "// Code generated by regview gen. DO NOT EDIT.")
	fmt.Fprintln(w)
	if len(g.device.Description) > 0 {
		fmt.Fprintf(w, "// Package %s describes the registers of the %s.\n", g.pkg, g.device.Name)
		fmt.Fprintf(w, "//\n// %s\n", comment(g.device.Description))
	}
	fmt.Fprintf(w, "package %s\n\n", g.pkg)
}

func (g *generator) generatePeripheral(w io.Writer, p *peripheral.Peripheral) error {
	name := cleanIdentifier(p.Name())
	if len(name) == 0 {
		return fmt.Errorf("peripheral %q has no usable name", p.Name())
	}

	if len(p.Description()) > 0 {
		fmt.Fprintf(w, "// %s: %s\n", name, comment(p.Description()))
	}
	fmt.Fprintf(w, "const %s_BASE = %s\n\n", name, bitutil.HexFormat(p.BaseAddress(), 8, true))

	for _, reg := range p.Registers() {
		regName := name + "_" + registerPath(reg)
		if len(reg.Description()) > 0 {
			fmt.Fprintf(w, "// %s: %s\n", regName, comment(reg.Description()))
		}
		fmt.Fprintf(w, "// %s, %d bits, reset %s\n", reg.AccessType(), reg.Size(),
			bitutil.HexFormat(reg.ResetValue(), bitutil.HexDigits(reg.Size()), true))
		fmt.Fprintln(w, "const (")
		fmt.Fprintf(w, "%s = %s\n", regName, bitutil.HexFormat(reg.Address(), 8, true))

		for _, f := range reg.Fields() {
			g.generateField(w, regName, f)
		}
		fmt.Fprintln(w, ")")
		fmt.Fprintln(w)
	}
	return nil
}

func (g *generator) generateField(w io.Writer, regName string, f *peripheral.Field) {
	fieldName := regName + "_" + cleanIdentifier(f.Name())
	mask := bitutil.CreateMask[uint64](f.Offset(), f.Width())

	fmt.Fprintln(w)
	if len(f.Description()) > 0 {
		fmt.Fprintf(w, "// %s: %s\n", f.Label(), comment(f.Description()))
	}
	fmt.Fprintf(w, "%s_Pos = %d\n", fieldName, f.Offset())
	fmt.Fprintf(w, "%s_Msk = %s\n", fieldName, bitutil.HexFormat(mask, 0, true))

	for _, v := range f.Enumeration().Values() {
		valueName := fieldName + "_" + cleanIdentifier(v.Name)
		if len(v.Description) > 0 {
			fmt.Fprintf(w, "%s = %s // %s\n", valueName, bitutil.HexFormat(v.Value, 0, true), comment(v.Description))
		} else {
			fmt.Fprintf(w, "%s = %s\n", valueName, bitutil.HexFormat(v.Value, 0, true))
		}
	}
}

// registerPath joins the names of the clusters holding reg and its own name.
func registerPath(reg *peripheral.Register) string {
	parts := []string{cleanIdentifier(reg.Name())}
	for n := reg.Parent(); n != nil; n = n.Parent() {
		if _, ok := n.(*peripheral.Peripheral); ok {
			break
		}
		parts = append([]string{cleanIdentifier(n.Name())}, parts...)
	}
	return strings.Join(parts, "_")
}

func cleanIdentifier(s string) string {
	return strings.Trim(identifierPattern.ReplaceAllString(s, "_"), "_")
}

// comment folds a description onto a single line.
func comment(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
