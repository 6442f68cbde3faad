package types

import (
	"math"

	"fortio.org/safecast"
)

// IntegerPromote applies the integer promotion: bool and integers narrower
// than 32 bits become int32.
func IntegerPromote(k Kind) Kind {
	switch k {
	case KindBool, KindInt8, KindInt16, KindUInt8, KindUInt16:
		return KindInt32
	}
	return k
}

// Promote returns the common type of a binary arithmetic operation.
// KindInvalid means the operands have no common numeric type.
func Promote(a, b Kind) Kind {
	if !a.IsScalar() || !b.IsScalar() {
		return KindInvalid
	}
	if a.IsFloat() || b.IsFloat() {
		if a == KindFloat64 || b == KindFloat64 {
			return KindFloat64
		}
		return KindFloat32
	}
	a, b = IntegerPromote(a), IntegerPromote(b)
	if a == b {
		return a
	}
	if a.IsSigned() == b.IsSigned() {
		if a.Width() >= b.Width() {
			return a
		}
		return b
	}
	signed, unsigned := a, b
	if unsigned.IsSigned() {
		signed, unsigned = b, a
	}
	if unsigned.Width() >= signed.Width() {
		return unsigned
	}
	// знаковый шире и вмещает весь диапазон беззнакового
	return signed
}

// CanWiden reports whether a value of kind from converts to kind to without
// loss of range or precision. Such conversions are always implicit.
func CanWiden(from, to Kind) bool {
	if from == to {
		return from != KindInvalid
	}
	if from == KindVoid || to == KindVoid || from == KindInvalid || to == KindInvalid {
		return false
	}
	switch {
	case from == KindBool:
		return to.IsNumeric()
	case to == KindBool:
		return false
	case from.IsInteger() && to.IsInteger():
		if from.IsSigned() && to.IsUnsigned() {
			return false
		}
		if from.IsUnsigned() && to.IsSigned() {
			return to.Width() > from.Width()
		}
		return to.Width() >= from.Width()
	case from.IsInteger() && to.IsFloat():
		// мантисса float32: 24 бита, float64: 53
		if to == KindFloat32 {
			return from.Width() <= Width16
		}
		return from.Width() <= Width32
	case from.IsFloat() && to.IsFloat():
		return to.Width() >= from.Width()
	}
	return false
}

// CanConvert reports whether an explicit conversion between builtins exists.
func CanConvert(from, to Kind) bool {
	if from == to {
		return from != KindInvalid
	}
	return from.IsScalar() && to.IsScalar()
}

// FitsInt reports whether the constant v is representable in kind k.
func FitsInt(k Kind, v int64) bool {
	var err error
	switch k {
	case KindInt8:
		_, err = safecast.Conv[int8](v)
	case KindInt16:
		_, err = safecast.Conv[int16](v)
	case KindInt32:
		_, err = safecast.Conv[int32](v)
	case KindInt64:
		return true
	case KindUInt8:
		_, err = safecast.Conv[uint8](v)
	case KindUInt16:
		_, err = safecast.Conv[uint16](v)
	case KindUInt32:
		_, err = safecast.Conv[uint32](v)
	case KindUInt64:
		_, err = safecast.Conv[uint64](v)
	case KindBool:
		return v == 0 || v == 1
	case KindFloat32:
		return v >= -(1<<24) && v <= 1<<24
	case KindFloat64:
		return v >= -(1<<53) && v <= 1<<53
	default:
		return false
	}
	return err == nil
}

// Range returns the inclusive bounds of an integer kind as int64; the upper
// bound of uint64 saturates at MaxInt64.
func Range(k Kind) (lo, hi int64) {
	switch k {
	case KindInt8:
		return math.MinInt8, math.MaxInt8
	case KindInt16:
		return math.MinInt16, math.MaxInt16
	case KindInt32:
		return math.MinInt32, math.MaxInt32
	case KindInt64:
		return math.MinInt64, math.MaxInt64
	case KindUInt8:
		return 0, math.MaxUint8
	case KindUInt16:
		return 0, math.MaxUint16
	case KindUInt32:
		return 0, math.MaxUint32
	case KindUInt64:
		return 0, math.MaxInt64
	case KindBool:
		return 0, 1
	}
	return 0, 0
}

// LiteralKind returns the smallest of int32, int64 that holds an integer
// literal value.
func LiteralKind(v uint64) Kind {
	if v <= math.MaxInt32 {
		return KindInt32
	}
	if v <= math.MaxInt64 {
		return KindInt64
	}
	return KindUInt64
}
