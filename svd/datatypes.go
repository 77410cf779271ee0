package svd

import (
	"encoding/xml"
	"fmt"
	"strings"

	"omibyte.io/regview/bitutil"
)

// Integer is a scaled non-negative integer as written in a device
// description: decimal, 0x hex or # binary.
type Integer uint64

func (i *Integer) set(s string) error {
	value, err := bitutil.ParseInteger(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	*i = Integer(value)
	return nil
}

func (i *Integer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var v string
	if err := d.DecodeElement(&v, &start); err != nil {
		return err
	}
	return i.set(v)
}

func (i *Integer) UnmarshalXMLAttr(attr xml.Attr) error {
	return i.set(attr.Value)
}

// EnumValue is the value of an enumerated value. A # binary value may use x
// for bits that do not matter. They read as 0.
type EnumValue uint64

func (e *EnumValue) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var v string
	if err := d.DecodeElement(&v, &start); err != nil {
		return err
	}
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "#") {
		v = strings.NewReplacer("x", "0", "X", "0").Replace(v)
	}
	value, err := bitutil.ParseInteger(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	*e = EnumValue(value)
	return nil
}

func uint64Ptr(i *Integer) *uint64 {
	if i == nil {
		return nil
	}
	v := uint64(*i)
	return &v
}
