package diag

import "fmt"

// Code is a compact numeric identifier for a diagnostic kind. Ranges:
// 3xxx name resolution, 4xxx typing, 5xxx mutability/aliasing,
// 6xxx control-flow shape, 7xxx structural, 8xxx advisory.
type Code uint16

const (
	UnknownCode Code = 0

	// Name resolution (3000-3099)
	NamInfo                Code = 3000
	NamUndefinedIdentifier Code = 3001
	NamUndefinedFunction   Code = 3002
	NamRedeclaration       Code = 3003
	NamUndefinedStruct     Code = 3004
	NamUndefinedEnum       Code = 3005
	NamUndefinedField      Code = 3006
	NamUndefinedVariant    Code = 3007
	NamUndefinedLifetime   Code = 3008

	// Typing (4000-4099)
	TypInfo               Code = 4000
	TypMismatch           Code = 4001
	TypWrongArgumentCount Code = 4002
	TypWrongArgumentType  Code = 4003
	TypInvalidType        Code = 4004
	TypNotAFunction       Code = 4005
	TypNotAType           Code = 4006
	TypVarRebound         Code = 4007
	TypFieldCountMismatch Code = 4008

	// Mutability and aliasing (5000-5099)
	BrwInfo                   Code = 5000
	BrwCannotAssignImmutable  Code = 5001
	BrwMutableBorrowConflict  Code = 5002
	BrwInvalidRef             Code = 5003
	BrwInvalidDeref           Code = 5004
	BrwOverlappingBorrows     Code = 5005
	BrwBorrowOutlivesLifetime Code = 5006

	// Control-flow shape (6000-6099)
	FlwInfo                  Code = 6000
	FlwNonExhaustiveMatch    Code = 6001
	FlwDuplicateMatchPattern Code = 6002
	FlwMissingReturnValue    Code = 6003
	FlwReturnValueInVoid     Code = 6004
	FlwUnreachableMatchArm   Code = 6005

	// Structural (7000-7099)
	StrInvalidSyntax      Code = 7000
	StrUnsupportedFeature Code = 7001

	// Advisory (8000-8099)
	AdvInfo             Code = 8000
	AdvStructLayout     Code = 8001
	AdvHeapEscape       Code = 8002
	AdvLoopVectorizable Code = 8003
	AdvTimings          Code = 8004
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown diagnostic",

	NamInfo:                "Name resolution note",
	NamUndefinedIdentifier: "Undefined identifier",
	NamUndefinedFunction:   "Undefined function",
	NamRedeclaration:       "Redeclaration in the same scope",
	NamUndefinedStruct:     "Undefined struct",
	NamUndefinedEnum:       "Undefined enum",
	NamUndefinedField:      "Undefined field",
	NamUndefinedVariant:    "Undefined enum variant",
	NamUndefinedLifetime:   "Undefined lifetime",

	TypInfo:               "Typing note",
	TypMismatch:           "Type mismatch",
	TypWrongArgumentCount: "Wrong number of arguments",
	TypWrongArgumentType:  "Wrong argument type",
	TypInvalidType:        "Invalid type",
	TypNotAFunction:       "Called value is not a function",
	TypNotAType:           "Name does not refer to a type",
	TypVarRebound:         "Type variable bound inconsistently",
	TypFieldCountMismatch: "Struct literal field count mismatch",

	BrwInfo:                   "Borrow note",
	BrwCannotAssignImmutable:  "Cannot assign to immutable binding",
	BrwMutableBorrowConflict:  "Mutable borrow conflicts with other borrow",
	BrwInvalidRef:             "Invalid reference",
	BrwInvalidDeref:           "Invalid dereference",
	BrwOverlappingBorrows:     "Overlapping borrows of the same place",
	BrwBorrowOutlivesLifetime: "Borrow outlives its lifetime",

	FlwInfo:                  "Control-flow note",
	FlwNonExhaustiveMatch:    "Match is not exhaustive",
	FlwDuplicateMatchPattern: "Duplicate match pattern",
	FlwMissingReturnValue:    "Missing return value",
	FlwReturnValueInVoid:     "Cannot return a value from a void function",
	FlwUnreachableMatchArm:   "Unreachable match arm",

	StrInvalidSyntax:      "Invalid construct",
	StrUnsupportedFeature: "Unsupported feature",

	AdvInfo:             "Advisory",
	AdvStructLayout:     "Struct layout can be improved",
	AdvHeapEscape:       "Value escapes to the heap",
	AdvLoopVectorizable: "Loop is vectorizable",
	AdvTimings:          "Phase timing report",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("NAM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("BRW%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("FLW%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("STR%04d", ic)
	case ic >= 8000 && ic < 9000:
		return fmt.Sprintf("ADV%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
