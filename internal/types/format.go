package types

import (
	"fmt"
	"strings"

	"mica/internal/source"
)

// Format renders a type for diagnostics: "int", "&mut Point", "fn(int) -> bool".
// The interner that owns names must be provided for nominal and var names.
func (in *Interner) Format(id TypeID, names *source.Interner) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindUnit:
		return "()"
	case KindBool, KindInt, KindFloat, KindString, KindUnknown:
		return tt.Kind.String()
	case KindVar:
		if name := lookupName(names, tt.Name); name != "" {
			return "'" + name
		}
		return fmt.Sprintf("'t%d", tt.Payload)
	case KindRef:
		inner := in.Format(tt.Elem, names)
		if tt.Mutable {
			return "&mut " + inner
		}
		return "&" + inner
	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return "fn(?)"
		}
		parts := make([]string, 0, len(info.Params))
		for _, p := range info.Params {
			parts = append(parts, in.Format(p, names))
		}
		return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), in.Format(info.Result, names))
	case KindStruct, KindGeneric:
		info, ok := in.NominalInfo(id)
		if !ok {
			return "<nominal>"
		}
		name := lookupName(names, info.Name)
		if name == "" {
			name = "<anon>"
		}
		if len(info.Args) == 0 {
			return name
		}
		parts := make([]string, 0, len(info.Args))
		for _, a := range info.Args {
			parts = append(parts, in.Format(a, names))
		}
		return fmt.Sprintf("%s[%s]", name, strings.Join(parts, ", "))
	}
	return "<invalid>"
}

func lookupName(names *source.Interner, id source.StringID) string {
	if names == nil || id == source.NoStringID {
		return ""
	}
	s, _ := names.Lookup(id)
	return s
}
