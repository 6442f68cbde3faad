package types

// FamilyMask describes broad categories of types an operator accepts.
type FamilyMask uint32

const (
	FamilyNone FamilyMask = 0
	FamilyAny  FamilyMask = 1 << iota
	FamilyBool
	FamilySignedInt
	FamilyUnsignedInt
	FamilyFloat
	FamilyPointer
	FamilyArray
	FamilyEnum
)

const (
	FamilyIntegral = FamilySignedInt | FamilyUnsignedInt
	FamilyNumeric  = FamilyIntegral | FamilyFloat
	FamilyScalar   = FamilyNumeric | FamilyBool
)

// BinaryOp enumerates binary operators, including assignments.
type BinaryOp uint8

const (
	BinaryInvalid BinaryOp = iota
	BinaryMul
	BinaryDiv
	BinaryRem
	BinaryAdd
	BinarySub
	BinaryShl
	BinaryShr
	BinaryLess
	BinaryGreater
	BinaryLessEq
	BinaryGreaterEq
	BinaryEq
	BinaryNotEq
	BinaryBitAnd
	BinaryBitXor
	BinaryBitOr
	BinaryLogicalAnd
	BinaryLogicalOr
	BinaryAssign
	BinaryMulAssign
	BinaryDivAssign
	BinaryRemAssign
	BinaryAddAssign
	BinarySubAssign
	BinaryShlAssign
	BinaryShrAssign
	BinaryAndAssign
	BinaryXorAssign
	BinaryOrAssign
	BinaryComma
)

var binarySpelling = [...]string{
	BinaryInvalid:    "<invalid>",
	BinaryMul:        "*",
	BinaryDiv:        "/",
	BinaryRem:        "%",
	BinaryAdd:        "+",
	BinarySub:        "-",
	BinaryShl:        "<<",
	BinaryShr:        ">>",
	BinaryLess:       "<",
	BinaryGreater:    ">",
	BinaryLessEq:     "<=",
	BinaryGreaterEq:  ">=",
	BinaryEq:         "==",
	BinaryNotEq:      "!=",
	BinaryBitAnd:     "&",
	BinaryBitXor:     "^",
	BinaryBitOr:      "|",
	BinaryLogicalAnd: "&&",
	BinaryLogicalOr:  "||",
	BinaryAssign:     "=",
	BinaryMulAssign:  "*=",
	BinaryDivAssign:  "/=",
	BinaryRemAssign:  "%=",
	BinaryAddAssign:  "+=",
	BinarySubAssign:  "-=",
	BinaryShlAssign:  "<<=",
	BinaryShrAssign:  ">>=",
	BinaryAndAssign:  "&=",
	BinaryXorAssign:  "^=",
	BinaryOrAssign:   "|=",
	BinaryComma:      ",",
}

func (op BinaryOp) String() string {
	if int(op) < len(binarySpelling) {
		return binarySpelling[op]
	}
	return binarySpelling[BinaryInvalid]
}

// ParseBinaryOp maps an operator spelling back to its BinaryOp.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	for i, sp := range binarySpelling {
		if i != int(BinaryInvalid) && sp == s {
			return BinaryOp(i), true
		}
	}
	return BinaryInvalid, false
}

// UnaryOp enumerates prefix and postfix unary operators.
type UnaryOp uint8

const (
	UnaryInvalid UnaryOp = iota
	UnaryPostInc
	UnaryPostDec
	UnaryPreInc
	UnaryPreDec
	UnaryAddrOf
	UnaryDeref
	UnaryPlus
	UnaryMinus
	UnaryBitNot
	UnaryLogicalNot
)

var unarySpelling = [...]string{
	UnaryInvalid:    "<invalid>",
	UnaryPostInc:    "x++",
	UnaryPostDec:    "x--",
	UnaryPreInc:     "++",
	UnaryPreDec:     "--",
	UnaryAddrOf:     "&",
	UnaryDeref:      "*",
	UnaryPlus:       "+",
	UnaryMinus:      "-",
	UnaryBitNot:     "~",
	UnaryLogicalNot: "!",
}

func (op UnaryOp) String() string {
	if int(op) < len(unarySpelling) {
		return unarySpelling[op]
	}
	return unarySpelling[UnaryInvalid]
}

// ParseUnaryOp maps an operator spelling back to its UnaryOp.
func ParseUnaryOp(s string) (UnaryOp, bool) {
	for i, sp := range unarySpelling {
		if i != int(UnaryInvalid) && sp == s {
			return UnaryOp(i), true
		}
	}
	return UnaryInvalid, false
}

// BinaryResult describes how to derive the result type for an operator.
type BinaryResult uint8

const (
	BinaryResultUnknown BinaryResult = iota
	BinaryResultLeft
	BinaryResultRight
	BinaryResultBool
	BinaryResultNumeric
	BinaryResultPointerDiff
)

// BinaryFlags annotate special handling for binary operators.
type BinaryFlags uint16

const (
	BinaryFlagNone       BinaryFlags = 0
	BinaryFlagAssignment BinaryFlags = 1 << iota
	BinaryFlagShortCircuit
	BinaryFlagCommutative
	BinaryFlagSameFamily
)

// BinarySpec lists operand families and expected result for an operation.
type BinarySpec struct {
	Left   FamilyMask
	Right  FamilyMask
	Result BinaryResult
	Flags  BinaryFlags
}

// UnaryResult indicates how to derive the resulting type.
type UnaryResult uint8

const (
	UnaryResultUnknown UnaryResult = iota
	UnaryResultSame
	UnaryResultBool
	UnaryResultNumeric
	UnaryResultAddress // &expr
	UnaryResultDeref   // *expr
)

// UnaryFlags capture operator-specific metadata.
type UnaryFlags uint8

const (
	UnaryFlagNone                UnaryFlags = 0
	UnaryFlagRequiresAddressable UnaryFlags = 1 << iota
	UnaryFlagModifies
)

// UnarySpec describes operand expectations for unary operators.
type UnarySpec struct {
	Operand FamilyMask
	Result  UnaryResult
	Flags   UnaryFlags
}

var binarySpecTable = map[BinaryOp][]BinarySpec{
	BinaryAdd: {
		{Left: FamilyNumeric | FamilyEnum, Right: FamilyNumeric | FamilyEnum, Result: BinaryResultNumeric, Flags: BinaryFlagCommutative},
		{Left: FamilyPointer, Right: FamilyIntegral, Result: BinaryResultLeft},
		{Left: FamilyIntegral, Right: FamilyPointer, Result: BinaryResultRight},
	},
	BinarySub: {
		{Left: FamilyNumeric | FamilyEnum, Right: FamilyNumeric | FamilyEnum, Result: BinaryResultNumeric},
		{Left: FamilyPointer, Right: FamilyIntegral, Result: BinaryResultLeft},
		{Left: FamilyPointer, Right: FamilyPointer, Result: BinaryResultPointerDiff, Flags: BinaryFlagSameFamily},
	},
	BinaryMul: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultNumeric, Flags: BinaryFlagCommutative},
	},
	BinaryDiv: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultNumeric},
	},
	BinaryRem: {
		{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultNumeric},
	},
	BinaryBitAnd: {
		{Left: FamilyIntegral | FamilyEnum, Right: FamilyIntegral | FamilyEnum, Result: BinaryResultNumeric, Flags: BinaryFlagCommutative},
	},
	BinaryBitOr: {
		{Left: FamilyIntegral | FamilyEnum, Right: FamilyIntegral | FamilyEnum, Result: BinaryResultNumeric, Flags: BinaryFlagCommutative},
	},
	BinaryBitXor: {
		{Left: FamilyIntegral | FamilyEnum, Right: FamilyIntegral | FamilyEnum, Result: BinaryResultNumeric, Flags: BinaryFlagCommutative},
	},
	BinaryShl: {
		{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft},
	},
	BinaryShr: {
		{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft},
	},
	BinaryLogicalAnd: {
		{Left: FamilyScalar | FamilyPointer, Right: FamilyScalar | FamilyPointer, Result: BinaryResultBool, Flags: BinaryFlagShortCircuit},
	},
	BinaryLogicalOr: {
		{Left: FamilyScalar | FamilyPointer, Right: FamilyScalar | FamilyPointer, Result: BinaryResultBool, Flags: BinaryFlagShortCircuit},
	},
	BinaryEq: {
		{Left: FamilyScalar | FamilyEnum, Right: FamilyScalar | FamilyEnum, Result: BinaryResultBool, Flags: BinaryFlagCommutative},
		{Left: FamilyPointer, Right: FamilyPointer, Result: BinaryResultBool, Flags: BinaryFlagSameFamily | BinaryFlagCommutative},
	},
	BinaryNotEq: {
		{Left: FamilyScalar | FamilyEnum, Right: FamilyScalar | FamilyEnum, Result: BinaryResultBool, Flags: BinaryFlagCommutative},
		{Left: FamilyPointer, Right: FamilyPointer, Result: BinaryResultBool, Flags: BinaryFlagSameFamily | BinaryFlagCommutative},
	},
	BinaryLess: {
		{Left: FamilyNumeric | FamilyEnum, Right: FamilyNumeric | FamilyEnum, Result: BinaryResultBool},
		{Left: FamilyPointer, Right: FamilyPointer, Result: BinaryResultBool, Flags: BinaryFlagSameFamily},
	},
	BinaryLessEq: {
		{Left: FamilyNumeric | FamilyEnum, Right: FamilyNumeric | FamilyEnum, Result: BinaryResultBool},
		{Left: FamilyPointer, Right: FamilyPointer, Result: BinaryResultBool, Flags: BinaryFlagSameFamily},
	},
	BinaryGreater: {
		{Left: FamilyNumeric | FamilyEnum, Right: FamilyNumeric | FamilyEnum, Result: BinaryResultBool},
		{Left: FamilyPointer, Right: FamilyPointer, Result: BinaryResultBool, Flags: BinaryFlagSameFamily},
	},
	BinaryGreaterEq: {
		{Left: FamilyNumeric | FamilyEnum, Right: FamilyNumeric | FamilyEnum, Result: BinaryResultBool},
		{Left: FamilyPointer, Right: FamilyPointer, Result: BinaryResultBool, Flags: BinaryFlagSameFamily},
	},
	BinaryAssign: {
		{Left: FamilyAny, Right: FamilyAny, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
	},
	BinaryAddAssign: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
		{Left: FamilyPointer, Right: FamilyIntegral, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
	},
	BinarySubAssign: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
		{Left: FamilyPointer, Right: FamilyIntegral, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
	},
	BinaryMulAssign: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
	},
	BinaryDivAssign: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
	},
	BinaryRemAssign: {
		{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
	},
	BinaryAndAssign: {
		{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
	},
	BinaryOrAssign: {
		{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
	},
	BinaryXorAssign: {
		{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
	},
	BinaryShlAssign: {
		{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
	},
	BinaryShrAssign: {
		{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
	},
	BinaryComma: {
		{Left: FamilyAny, Right: FamilyAny, Result: BinaryResultRight},
	},
}

var unarySpecTable = map[UnaryOp]UnarySpec{
	UnaryPlus:       {Operand: FamilyNumeric, Result: UnaryResultNumeric},
	UnaryMinus:      {Operand: FamilyNumeric, Result: UnaryResultNumeric},
	UnaryBitNot:     {Operand: FamilyIntegral, Result: UnaryResultNumeric},
	UnaryLogicalNot: {Operand: FamilyScalar | FamilyPointer, Result: UnaryResultBool},
	UnaryDeref:      {Operand: FamilyPointer, Result: UnaryResultDeref},
	UnaryAddrOf:     {Operand: FamilyAny, Result: UnaryResultAddress, Flags: UnaryFlagRequiresAddressable},
	UnaryPreInc:     {Operand: FamilyNumeric | FamilyPointer, Result: UnaryResultSame, Flags: UnaryFlagRequiresAddressable | UnaryFlagModifies},
	UnaryPreDec:     {Operand: FamilyNumeric | FamilyPointer, Result: UnaryResultSame, Flags: UnaryFlagRequiresAddressable | UnaryFlagModifies},
	UnaryPostInc:    {Operand: FamilyNumeric | FamilyPointer, Result: UnaryResultSame, Flags: UnaryFlagRequiresAddressable | UnaryFlagModifies},
	UnaryPostDec:    {Operand: FamilyNumeric | FamilyPointer, Result: UnaryResultSame, Flags: UnaryFlagRequiresAddressable | UnaryFlagModifies},
}

// BinarySpecs returns the operand specs for op.
func BinarySpecs(op BinaryOp) []BinarySpec {
	return binarySpecTable[op]
}

// UnarySpecFor returns the spec for a unary operator.
func UnarySpecFor(op UnaryOp) (UnarySpec, bool) {
	spec, ok := unarySpecTable[op]
	return spec, ok
}

// IsAssignment reports whether op stores into its left operand.
func (op BinaryOp) IsAssignment() bool {
	return op >= BinaryAssign && op <= BinaryOrAssign
}

// IsComparison reports relational and equality operators.
func (op BinaryOp) IsComparison() bool {
	return op >= BinaryLess && op <= BinaryNotEq
}

// Matches reports whether a family satisfies the mask. FamilyAny matches everything.
func (m FamilyMask) Matches(f FamilyMask) bool {
	if m&FamilyAny != 0 {
		return true
	}
	return m&f != 0
}
