// Package svd reads CMSIS-SVD device descriptions into peripheral trees.
package svd

type DeviceElement struct {
	Name        string             `xml:"name"`
	Description string             `xml:"description"`
	Vendor      string             `xml:"vendor"`
	Version     string             `xml:"version"`
	Width       *Integer           `xml:"width"`
	Peripherals PeripheralsElement `xml:"peripherals"`
	RegisterProperties
}

// RegisterProperties are the defaults inherited by the registers below the
// element that declares them.
type RegisterProperties struct {
	Size       *Integer `xml:"size"`
	Access     string   `xml:"access"`
	ResetValue *Integer `xml:"resetValue"`
}

func (r RegisterProperties) inherit(parent RegisterProperties) RegisterProperties {
	if r.Size == nil {
		r.Size = parent.Size
	}
	if len(r.Access) == 0 {
		r.Access = parent.Access
	}
	if r.ResetValue == nil {
		r.ResetValue = parent.ResetValue
	}
	return r
}

// DimElement describes an element repeated dim times, dimIncrement apart.
type DimElement struct {
	Dim          *Integer `xml:"dim"`
	DimIncrement Integer  `xml:"dimIncrement"`
	DimIndex     string   `xml:"dimIndex"`
}

type PeripheralsElement struct {
	Elements []PeripheralElement `xml:"peripheral"`
}

type PeripheralElement struct {
	Name          string                `xml:"name"`
	Description   string                `xml:"description"`
	GroupName     string                `xml:"groupName"`
	BaseAddress   *Integer              `xml:"baseAddress"`
	AddressBlocks []AddressBlockElement `xml:"addressBlock"`
	Registers     RegistersElement      `xml:"registers"`
	DerivedFrom   string                `xml:"derivedFrom,attr"`
	RegisterProperties
}

type AddressBlockElement struct {
	Offset Integer `xml:"offset"`
	Size   Integer `xml:"size"`
	Usage  string  `xml:"usage"`
}

type RegistersElement struct {
	Registers []RegisterElement `xml:"register"`
	Clusters  []ClusterElement  `xml:"cluster"`
}

func (r RegistersElement) empty() bool {
	return len(r.Registers) == 0 && len(r.Clusters) == 0
}

type ClusterElement struct {
	Name          string            `xml:"name"`
	Description   string            `xml:"description"`
	AddressOffset *Integer          `xml:"addressOffset"`
	Registers     []RegisterElement `xml:"register"`
	Clusters      []ClusterElement  `xml:"cluster"`
	DerivedFrom   string            `xml:"derivedFrom,attr"`
	DimElement
	RegisterProperties
}

type RegisterElement struct {
	Name          string        `xml:"name"`
	Description   string        `xml:"description"`
	AddressOffset *Integer      `xml:"addressOffset"`
	Fields        FieldsElement `xml:"fields"`
	DerivedFrom   string        `xml:"derivedFrom,attr"`
	DimElement
	RegisterProperties
}

type FieldsElement struct {
	Elements []FieldElement `xml:"field"`
}

type FieldElement struct {
	Name             string                    `xml:"name"`
	Description      string                    `xml:"description"`
	BitOffset        *Integer                  `xml:"bitOffset"`
	BitWidth         *Integer                  `xml:"bitWidth"`
	LSB              *Integer                  `xml:"lsb"`
	MSB              *Integer                  `xml:"msb"`
	BitRange         string                    `xml:"bitRange"`
	Access           string                    `xml:"access"`
	EnumeratedValues []EnumeratedValuesElement `xml:"enumeratedValues"`
	DimElement
}

type EnumeratedValuesElement struct {
	Name        string                   `xml:"name"`
	Usage       string                   `xml:"usage"`
	DerivedFrom string                   `xml:"derivedFrom,attr"`
	Elements    []EnumeratedValueElement `xml:"enumeratedValue"`
}

type EnumeratedValueElement struct {
	Name        string    `xml:"name"`
	Description string    `xml:"description"`
	Value       EnumValue `xml:"value"`
	IsDefault   bool      `xml:"isDefault"`
}
