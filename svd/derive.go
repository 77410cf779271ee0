package svd

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// derivation orders elements so that each one follows the element it derives
// from. base[i] is the index of the base of element i, or -1.
type derivation struct {
	order []int
	base  []int
}

// derive resolves derivedFrom references among elements of one kind. A
// reference may be a dotted path, in which case only the last part is used.
func derive(kind string, names, derivedFrom []string) (derivation, error) {
	g := simple.NewDirectedGraph()
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
		g.AddNode(simple.Node(i))
	}

	d := derivation{base: make([]int, len(names))}
	for i, ref := range derivedFrom {
		d.base[i] = -1
		if len(ref) == 0 {
			continue
		}
		if dot := strings.LastIndex(ref, "."); dot >= 0 {
			ref = ref[dot+1:]
		}
		from, ok := index[ref]
		if !ok {
			return derivation{}, fmt.Errorf("%w: %s %s derives from %s", ErrUnknownDerivation, kind, names[i], ref)
		}
		if from == i {
			return derivation{}, fmt.Errorf("%w: %s %s derives from itself", ErrDerivationCycle, kind, names[i])
		}
		d.base[i] = from
		g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(i)))
	}

	sorted, err := topo.Sort(g)
	if err != nil {
		return derivation{}, fmt.Errorf("%w: %s: %v", ErrDerivationCycle, kind, err)
	}
	d.order = make([]int, len(sorted))
	for i, n := range sorted {
		d.order[i] = int(n.ID())
	}
	return d, nil
}

// resolve replaces every element of elems with the result of merging it onto
// its resolved base.
func resolve[T any](kind string, elems []T, name, derivedFrom func(T) string, merge func(base, derived T) T) ([]T, error) {
	names := make([]string, len(elems))
	refs := make([]string, len(elems))
	for i, e := range elems {
		names[i] = name(e)
		refs[i] = derivedFrom(e)
	}

	d, err := derive(kind, names, refs)
	if err != nil {
		return nil, err
	}

	result := make([]T, len(elems))
	for _, i := range d.order {
		result[i] = elems[i]
		if b := d.base[i]; b >= 0 {
			result[i] = merge(result[b], elems[i])
		}
	}
	return result, nil
}

func mergePeripheral(base, derived PeripheralElement) PeripheralElement {
	result := base
	result.Name = derived.Name
	result.DerivedFrom = ""
	if derived.BaseAddress != nil {
		result.BaseAddress = derived.BaseAddress
	}
	if len(derived.Description) > 0 {
		result.Description = derived.Description
	}
	if len(derived.GroupName) > 0 {
		result.GroupName = derived.GroupName
	}
	if len(derived.AddressBlocks) > 0 {
		result.AddressBlocks = derived.AddressBlocks
	}
	result.RegisterProperties = derived.RegisterProperties.inherit(base.RegisterProperties)
	result.Registers = RegistersElement{
		Registers: mergeByName(base.Registers.Registers, derived.Registers.Registers, func(r RegisterElement) string { return r.Name }),
		Clusters:  mergeByName(base.Registers.Clusters, derived.Registers.Clusters, func(c ClusterElement) string { return c.Name }),
	}
	return result
}

// mergeByName returns base with the elements of derived replacing those of
// the same name. The rest of derived is appended.
func mergeByName[T any](base, derived []T, name func(T) string) []T {
	if len(derived) == 0 {
		return base
	}
	result := make([]T, 0, len(base)+len(derived))
	replaced := make(map[string]bool, len(derived))
	for _, e := range derived {
		replaced[name(e)] = true
	}
	for _, e := range base {
		if !replaced[name(e)] {
			result = append(result, e)
		}
	}
	return append(result, derived...)
}

func mergeRegister(base, derived RegisterElement) RegisterElement {
	result := base
	result.Name = derived.Name
	result.DerivedFrom = ""
	result.AddressOffset = derived.AddressOffset
	result.DimElement = derived.DimElement
	if len(derived.Description) > 0 {
		result.Description = derived.Description
	}
	if len(derived.Fields.Elements) > 0 {
		result.Fields = derived.Fields
	}
	result.RegisterProperties = derived.RegisterProperties.inherit(base.RegisterProperties)
	return result
}

func mergeCluster(base, derived ClusterElement) ClusterElement {
	result := base
	result.Name = derived.Name
	result.DerivedFrom = ""
	result.AddressOffset = derived.AddressOffset
	result.DimElement = derived.DimElement
	if len(derived.Description) > 0 {
		result.Description = derived.Description
	}
	if len(derived.Registers) > 0 || len(derived.Clusters) > 0 {
		result.Registers = derived.Registers
		result.Clusters = derived.Clusters
	}
	result.RegisterProperties = derived.RegisterProperties.inherit(base.RegisterProperties)
	return result
}
