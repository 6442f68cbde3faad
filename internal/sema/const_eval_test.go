package sema

import (
	"math"
	"testing"

	"github.com/go-test/deep"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/types"
)

func TestCheckedArithmetic(t *testing.T) {
	cases := []struct {
		name string
		op   func(x, y int64) (int64, bool)
		x, y int64
		want int64
		ok   bool
	}{
		{"add", addInt, 40, 2, 42, true},
		{"add past max", addInt, math.MaxInt64, 1, 0, false},
		{"add past min", addInt, math.MinInt64, -1, 0, false},
		{"add mixed signs", addInt, math.MaxInt64, math.MinInt64, -1, true},
		{"sub", subInt, 2, 44, -42, true},
		{"sub past min", subInt, math.MinInt64, 1, 0, false},
		{"sub past max", subInt, 0, math.MinInt64, 0, false},
		{"mul", mulInt, -6, 7, -42, true},
		{"mul by zero", mulInt, math.MaxInt64, 0, 0, true},
		{"mul past max", mulInt, 1 << 62, 4, 0, false},
		{"mul min by minus one", mulInt, math.MinInt64, -1, 0, false},
		{"mul minus one by min", mulInt, -1, math.MinInt64, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.op(tc.x, tc.y)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("want (%d, %v), got (%d, %v)", tc.want, tc.ok, got, ok)
			}
		})
	}
}

func TestEnumValueOverflow(t *testing.T) {
	cases := []struct {
		name  string
		inits func(b *builder) []ast.Expr
		want  []diag.Code
	}{
		{
			name: "explicit value overflows",
			inits: func(b *builder) []ast.Expr {
				return []ast.Expr{b.binary(types.BinaryAdd, b.num(math.MaxInt64), b.num(1))}
			},
			want: []diag.Code{diag.SemaConstantOutOfRange},
		},
		{
			name: "implicit value after max",
			inits: func(b *builder) []ast.Expr {
				return []ast.Expr{b.num(math.MaxInt64), nil}
			},
			want: []diag.Code{diag.SemaEnumValueOverflow},
		},
		{
			name: "largest value fits",
			inits: func(b *builder) []ast.Expr {
				return []ast.Expr{b.binary(types.BinarySub, b.num(math.MaxInt64), b.num(1)), nil}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBuilder()
			mod := ast.NewModule("app", false)
			inits := tc.inits(b)
			names := []string{"low", "high"}[:len(inits)]
			e := b.enumType("Level", b.kind(types.KindInt64), names...)
			for i, v := range inits {
				if v != nil {
					e.Constants[i].Init = v
				}
			}
			addFile(mod, "a.c2", e)

			res := analyse(t, b, mod)
			got := res.codes()
			if len(got) == 0 {
				got = nil
			}
			if diff := deep.Equal(got, tc.want); diff != nil {
				t.Fatalf("codes: %v", diff)
			}
		})
	}
}
