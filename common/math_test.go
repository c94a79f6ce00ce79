package common

import (
	"testing"
)

func assertTrue(t *testing.T, value bool, msg string) {
	t.Helper()
	if !value {
		t.Errorf(msg)
	}
}

func TestClamp(t *testing.T) {
	assertTrue(t, Clamp(2, 0, 1) == 1, "Higher than range error")
	assertTrue(t, Clamp(1, 0, 2) == 1, "Within range error")
	assertTrue(t, Clamp(0, 1, 2) == 1, "Lower than range error")
}

func TestSqr(t *testing.T) {
	assertTrue(t, Sqr(2) == 4, "Sqr squares a number")
	assertTrue(t, Sqr(-4) == 16, "Sqr squares a number")
	assertTrue(t, Sqr(0) == 0, "Sqr squares a number")
}

func TestVcross(t *testing.T) {
	v1 := []float32{3, -3, 1}
	v2 := []float32{4, 9, 2}
	result := make([]float32, 3)
	Vcross(result, v1, v2)
	assertTrue(t, result[0] == -15, "Computes cross product")
	assertTrue(t, result[1] == -2, "Computes cross product")
	assertTrue(t, result[2] == 39, "Computes cross product")

	Vcross(result, v1, v1)
	assertTrue(t, result[0] == 0, "Cross product with itself is zero")
	assertTrue(t, result[1] == 0, "Cross product with itself is zero")
	assertTrue(t, result[2] == 0, "Cross product with itself is zero")
}

func TestVdot(t *testing.T) {
	v1 := []float32{1, 0, 0}
	assertTrue(t, Vdot(v1, v1) == 1, "Dot normalized vector with itself")

	v2 := []float32{0, 0, 0}
	assertTrue(t, Vdot([]float32{1, 2, 3}, v2) == 0, "Dot zero vector with anything is zero")
}

func TestVdist(t *testing.T) {
	v1 := []float32{3, 1, 3}
	v2 := []float32{1, 3, 1}
	d := Vdist(v1, v2)
	assertTrue(t, Fabsf(d-3.4641) < 0.001, "Distance between two points")
}

func TestVequal(t *testing.T) {
	assertTrue(t, Vequal([]float32{1, 2, 3}, []float32{1, 2, 3}), "Equal points are equal")
	assertTrue(t, !Vequal([]float32{1, 2, 3}, []float32{1, 2, 3.01}), "Far points are not equal")
	// Colocation threshold is 1/16384 of a world unit.
	assertTrue(t, Vequal([]float32{1, 2, 3}, []float32{1, 2, 3 + 1.0/65536.0}), "Near points are equal")
}

func TestTriArea2D(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{2, 0, 0}
	c := []float32{0, 2, 0}
	area := TriArea2D(a, b, c)
	assertTrue(t, Fabsf(Fabsf(area)-4) < 0.0001, "Twice the triangle area")
}

func TestNextPow2(t *testing.T) {
	assertTrue(t, NextPow2(1) == 1, "NextPow2(1)")
	assertTrue(t, NextPow2(3) == 4, "NextPow2(3)")
	assertTrue(t, NextPow2(16) == 16, "NextPow2(16)")
	assertTrue(t, NextPow2(17) == 32, "NextPow2(17)")
}

func TestIlog2(t *testing.T) {
	assertTrue(t, Ilog2(1) == 0, "Ilog2(1)")
	assertTrue(t, Ilog2(2) == 1, "Ilog2(2)")
	assertTrue(t, Ilog2(1024) == 10, "Ilog2(1024)")
}

func TestAlign4(t *testing.T) {
	assertTrue(t, Align4(0) == 0, "Align4(0)")
	assertTrue(t, Align4(1) == 4, "Align4(1)")
	assertTrue(t, Align4(4) == 4, "Align4(4)")
	assertTrue(t, Align4(5) == 8, "Align4(5)")
}

func TestBitCellBit(t *testing.T) {
	assertTrue(t, BitCellBit(0) == 1, "Bit 0")
	assertTrue(t, BitCellBit(5) == 32, "Bit 5")
	// Bit index wraps at the cell boundary.
	assertTrue(t, BitCellBit(33) == 2, "Bit 33 wraps to bit 1")
}
