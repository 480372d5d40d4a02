package ieee754_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/gocbor/cbev/ieee754"
)

func TestToFloat32(t *testing.T) {
	tests := []struct {
		bits uint16
		want float32
	}{
		{0x0000, 0},
		{0x8000, float32(math.Copysign(0, -1))},
		{0x3c00, 1},
		{0xbc00, -1},
		{0x3555, 0.33325195},
		{0x7bff, 65504},    // max half
		{0x0001, 5.9604645e-08}, // smallest subnormal
		{0x0400, 6.1035156e-05}, // smallest normal
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%#04x", tt.bits), func(t *testing.T) {
			got := ieee754.ToFloat32(tt.bits)
			if got != tt.want {
				t.Fatalf("ToFloat32(%#04x) = %v, want %v", tt.bits, got, tt.want)
			}
		})
	}
}

func TestToFloat32InfAndNaN(t *testing.T) {
	if got := ieee754.ToFloat32(0x7c00); !math.IsInf(float64(got), 1) {
		t.Fatalf("+inf: got %v", got)
	}
	if got := ieee754.ToFloat32(0xfc00); !math.IsInf(float64(got), -1) {
		t.Fatalf("-inf: got %v", got)
	}
	if got := ieee754.ToFloat32(0x7e00); !math.IsNaN(float64(got)) {
		t.Fatalf("NaN: got %v", got)
	}
}

func TestIsNaN(t *testing.T) {
	if !ieee754.IsNaN(0x7e00) {
		t.Fatal("0x7e00 should be NaN")
	}
	if ieee754.IsNaN(0x7c00) {
		t.Fatal("0x7c00 is +inf, not NaN")
	}
}

func TestIsInf(t *testing.T) {
	if !ieee754.IsInf(0x7c00, 1) {
		t.Fatal("0x7c00 should be +inf")
	}
	if !ieee754.IsInf(0xfc00, -1) {
		t.Fatal("0xfc00 should be -inf")
	}
	if ieee754.IsInf(0x7c00, -1) {
		t.Fatal("0x7c00 is not -inf")
	}
	if !ieee754.IsInf(0xfc00, 0) {
		t.Fatal("sign==0 should match either infinity")
	}
}

func TestToFloat64(t *testing.T) {
	if got := ieee754.ToFloat64(0x3c00); got != 1 {
		t.Fatalf("ToFloat64(0x3c00) = %v, want 1", got)
	}
}
