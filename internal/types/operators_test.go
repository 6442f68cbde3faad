package types

import "testing"

func TestBinarySpecsLogicalAnd(t *testing.T) {
	specs := BinarySpecs(BinaryLogicalAnd)
	if len(specs) != 1 {
		t.Fatalf("expected single spec for logical and")
	}
	spec := specs[0]
	if spec.Left&FamilyBool == 0 || spec.Right&FamilyBool == 0 {
		t.Fatalf("logical and expects bool operands, got %+v", spec)
	}
	if spec.Result != BinaryResultBool || spec.Flags&BinaryFlagShortCircuit == 0 {
		t.Fatalf("expected short-circuit bool result, got %+v", spec)
	}
}

func TestRemainderRejectsFloat(t *testing.T) {
	for _, spec := range BinarySpecs(BinaryRem) {
		if spec.Left.Matches(FamilyFloat) {
			t.Fatalf("%% must not accept floats: %+v", spec)
		}
	}
}

func TestOperatorSpellingRoundTrip(t *testing.T) {
	for op := BinaryMul; op <= BinaryComma; op++ {
		got, ok := ParseBinaryOp(op.String())
		if !ok || got != op {
			t.Fatalf("binary %q: got %v ok=%v", op.String(), got, ok)
		}
	}
	for op := UnaryPostInc; op <= UnaryLogicalNot; op++ {
		got, ok := ParseUnaryOp(op.String())
		if !ok || got != op {
			t.Fatalf("unary %q: got %v ok=%v", op.String(), got, ok)
		}
	}
	if _, ok := ParseBinaryOp("<=>"); ok {
		t.Fatalf("unknown spelling must not parse")
	}
}

func TestAssignmentClassification(t *testing.T) {
	if !BinaryShlAssign.IsAssignment() || BinaryEq.IsAssignment() {
		t.Fatalf("assignment classification broken")
	}
	if !BinaryGreaterEq.IsComparison() || BinaryAdd.IsComparison() {
		t.Fatalf("comparison classification broken")
	}
	spec, ok := UnarySpecFor(UnaryPreInc)
	if !ok || spec.Flags&UnaryFlagRequiresAddressable == 0 {
		t.Fatalf("++ must require an addressable operand")
	}
}
