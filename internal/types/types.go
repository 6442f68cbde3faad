package types

import "fmt"

// Kind enumerates the builtin scalar kinds of the language.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat32
	KindFloat64
	KindBool
	KindVoid
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUInt8:
		return "uint8"
	case KindUInt16:
		return "uint16"
	case KindUInt32:
		return "uint32"
	case KindUInt64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindVoid:
		return "void"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// KindByName maps source spellings to builtin kinds. The C-style aliases
// (char, int, ...) are accepted alongside the sized names.
var KindByName = map[string]Kind{
	"int8":    KindInt8,
	"int16":   KindInt16,
	"int32":   KindInt32,
	"int64":   KindInt64,
	"uint8":   KindUInt8,
	"uint16":  KindUInt16,
	"uint32":  KindUInt32,
	"uint64":  KindUInt64,
	"float32": KindFloat32,
	"float64": KindFloat64,
	"bool":    KindBool,
	"void":    KindVoid,
	"char":    KindInt8,
	"int":     KindInt32,
	"u8":      KindUInt8,
	"u16":     KindUInt16,
	"u32":     KindUInt32,
	"u64":     KindUInt64,
	"i8":      KindInt8,
	"i16":     KindInt16,
	"i32":     KindInt32,
	"i64":     KindInt64,
	"f32":     KindFloat32,
	"f64":     KindFloat64,
}

// Width captures the precision of integers/floats in bits.
type Width uint8

const (
	WidthAny Width = 0
	Width1   Width = 1
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

func (k Kind) Width() Width {
	switch k {
	case KindBool:
		return Width1
	case KindInt8, KindUInt8:
		return Width8
	case KindInt16, KindUInt16:
		return Width16
	case KindInt32, KindUInt32, KindFloat32:
		return Width32
	case KindInt64, KindUInt64, KindFloat64:
		return Width64
	default:
		return WidthAny
	}
}

// Size returns the storage size in bytes (bool occupies one byte).
func (k Kind) Size() uint64 {
	switch k {
	case KindBool:
		return 1
	case KindVoid, KindInvalid:
		return 0
	default:
		return uint64(k.Width()) / 8
	}
}

func (k Kind) IsSigned() bool {
	return k >= KindInt8 && k <= KindInt64
}

func (k Kind) IsUnsigned() bool {
	return k >= KindUInt8 && k <= KindUInt64
}

func (k Kind) IsInteger() bool {
	return k.IsSigned() || k.IsUnsigned()
}

func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

func (k Kind) IsNumeric() bool {
	return k.IsInteger() || k.IsFloat()
}

// IsScalar reports kinds usable as a condition.
func (k Kind) IsScalar() bool {
	return k.IsNumeric() || k == KindBool
}

// Family returns the operator family of the kind.
func (k Kind) Family() FamilyMask {
	switch {
	case k == KindBool:
		return FamilyBool
	case k.IsSigned():
		return FamilySignedInt
	case k.IsUnsigned():
		return FamilyUnsignedInt
	case k.IsFloat():
		return FamilyFloat
	default:
		return FamilyNone
	}
}
