package lower

import (
	"testing"

	"github.com/raymyers/ralph-cc/pkg/ctypes"
	"github.com/raymyers/ralph-cc/pkg/ir"
	"github.com/raymyers/ralph-cc/pkg/target"
)

func TestLowerTypeScalars(t *testing.T) {
	tg := target.Default()
	in := ir.NewInterner()

	tests := []struct {
		name string
		typ  ctypes.Type
		want string
	}{
		{"void", ctypes.Void(), "void"},
		{"bool", ctypes.Type(ctypes.Tint{Size: ctypes.IBool, Sign: ctypes.Unsigned}), "i1"},
		{"char", ctypes.Char(), "int(8)"},
		{"short", ctypes.Short(), "int(16)"},
		{"int", ctypes.Int(), "int(32)"},
		{"long", ctypes.Long(), "int(64)"},
		{"float", ctypes.Float(), "float(32)"},
		{"double", ctypes.Double(), "float(64)"},
		{"pointer", ctypes.Pointer(ctypes.Int()), "ptr"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ref := LowerType(tc.typ, tg, in)
			got := in.TypeString(ref)
			if got != tc.want {
				t.Errorf("LowerType(%s) = %s, want %s", tc.name, got, tc.want)
			}
		})
	}
}

func TestLowerTypeArray(t *testing.T) {
	tg := target.Default()
	in := ir.NewInterner()

	ref := LowerType(ctypes.Array(ctypes.Int(), 10), tg, in)
	got := in.TypeString(ref)
	want := "array(int(32),10)"
	if got != want {
		t.Errorf("LowerType(array) = %s, want %s", got, want)
	}
}

func TestLowerTypeFunction(t *testing.T) {
	tg := target.Default()
	in := ir.NewInterner()

	fnType := ctypes.Tfunction{Params: []ctypes.Type{ctypes.Int(), ctypes.Pointer(ctypes.Char())}, Return: ctypes.Int()}
	ref := LowerType(fnType, tg, in)
	got := in.TypeString(ref)
	want := "func(int(32),ptr) int(32)"
	if got != want {
		t.Errorf("LowerType(function) = %s, want %s", got, want)
	}
}

func TestLowerTypeSharesTypeRefForEqualTypes(t *testing.T) {
	tg := target.Default()
	in := ir.NewInterner()

	a := LowerType(ctypes.Int(), tg, in)
	b := LowerType(ctypes.Int(), tg, in)
	if a != b {
		t.Errorf("expected the same TypeRef for two int lowerings, got %d and %d", a, b)
	}
}

func TestLowerTypeRespectsTargetWidths(t *testing.T) {
	in := ir.NewInterner()
	tg := &target.Spec{IntBits: 16, LongBits: 32, PointerBits: 32, Float32Bits: 32, Float64Bits: 64}

	ref := LowerType(ctypes.Int(), tg, in)
	got := in.TypeString(ref)
	if got != "int(16)" {
		t.Errorf("expected int to lower to int(16) under a 16-bit-int target, got %s", got)
	}
}

func TestLowerTypeStructPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected LowerType to panic on an unsupported struct type")
		}
	}()
	tg := target.Default()
	in := ir.NewInterner()
	LowerType(ctypes.Tstruct{Name: "point"}, tg, in)
}
