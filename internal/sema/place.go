package sema

import (
	"strings"

	"mica/internal/source"
)

// ProjectionKind enumerates the ways a place can be refined.
type ProjectionKind uint8

const (
	ProjField ProjectionKind = iota
	ProjIndex
	ProjDeref
)

// Projection is one step from a base variable towards a storage location.
type Projection struct {
	Kind  ProjectionKind
	Field source.StringID // for ProjField
	Index uint32          // for ProjIndex, when statically known
}

// Place is a storage location: a base variable plus projections.
type Place struct {
	Base source.StringID
	Proj []Projection
}

// PlaceOf builds a projection-free place for a plain variable.
func PlaceOf(base source.StringID) Place {
	return Place{Base: base}
}

// Overlaps reports whether two places may alias. The approximation is
// intentionally conservative: any two places rooted at the same variable are
// treated as overlapping regardless of their projections, so disjoint fields
// of one struct still count as a conflict.
func (p Place) Overlaps(other Place) bool {
	return p.Base == other.Base
}

// Key renders a stable map key for the place.
func (p Place) Key() string {
	var sb strings.Builder
	sb.WriteString("v")
	writeUint(&sb, uint32(p.Base))
	for _, proj := range p.Proj {
		switch proj.Kind {
		case ProjField:
			sb.WriteString(".f")
			writeUint(&sb, uint32(proj.Field))
		case ProjIndex:
			sb.WriteString(".i")
			writeUint(&sb, proj.Index)
		case ProjDeref:
			sb.WriteString(".*")
		}
	}
	return sb.String()
}

func writeUint(sb *strings.Builder, v uint32) {
	if v == 0 {
		sb.WriteByte('0')
		return
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	sb.Write(buf[i:])
}
