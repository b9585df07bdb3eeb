package sema

import (
	"fmt"
	"sort"

	"mica/internal/diag"
	"mica/internal/source"
	"mica/internal/types"
)

// sizeOfType estimates the machine footprint of a value, in bytes. The
// estimates feed the stack/heap decision and struct layout advisories; they
// assume a 64-bit target.
func (c *Checker) sizeOfType(id types.TypeID) uint32 {
	id = c.inf.Unifier().Resolve(id)
	tt, ok := c.types.Lookup(id)
	if !ok {
		return 0
	}
	switch tt.Kind {
	case types.KindUnit:
		return 0
	case types.KindBool:
		return 1
	case types.KindInt, types.KindFloat, types.KindRef:
		return 8
	case types.KindString, types.KindFn:
		return 16
	case types.KindStruct:
		info, ok := c.types.NominalInfo(id)
		if !ok || len(info.Fields) == 0 {
			// Enums carry only their tag.
			return 8
		}
		size, _ := packFields(info.Fields)
		return size
	case types.KindGeneric:
		// Opaque container header: pointer, length, capacity.
		return 24
	}
	return 8
}

func alignOf(size uint32) uint32 {
	switch {
	case size <= 1:
		return 1
	case size <= 2:
		return 2
	case size <= 4:
		return 4
	}
	return 8
}

func roundUp(off, align uint32) uint32 {
	if align == 0 {
		return off
	}
	return (off + align - 1) / align * align
}

// packFields lays the fields out in order with natural alignment and returns
// the padded struct size plus its alignment.
func packFields(fields []types.StructField) (size, align uint32) {
	align = 1
	var off uint32
	for _, f := range fields {
		a := alignOf(f.Size)
		if a > align {
			align = a
		}
		off = roundUp(off, a) + f.Size
	}
	return roundUp(off, align), align
}

// adviseStructLayout compares the declared field order against a
// largest-alignment-first order and, when reordering would shrink the struct,
// emits an informational advisory. The declared layout is never changed.
func (c *Checker) adviseStructLayout(name string, fields []types.StructField, at source.Span) {
	if len(fields) < 2 {
		return
	}
	declared, _ := packFields(fields)

	sorted := make([]types.StructField, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return alignOf(sorted[i].Size) > alignOf(sorted[j].Size)
	})
	optimal, _ := packFields(sorted)

	if declared <= optimal {
		return
	}
	diag.ReportInfo(c.reporter, diag.AdvStructLayout, at,
		fmt.Sprintf("struct '%s' occupies %d bytes; ordering fields by decreasing alignment would shrink it to %d",
			name, declared, optimal)).Emit()
}
