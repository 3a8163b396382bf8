package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestScale(t *testing.T) {
	m := Scale(2, 3, 4)

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

func TestTransformPoint(t *testing.T) {
	// Translate by (10, 20, 30)
	m := Translate(10, 20, 30)
	p := [3]float32{1, 2, 3}
	result := m.TransformPoint(p)

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformPointScale(t *testing.T) {
	m := Scale(2, 2, 2)
	p := [3]float32{1, 2, 3}
	result := m.TransformPoint(p)

	expected := [3]float32{2, 4, 6}
	if result != expected {
		t.Errorf("TransformPoint with scale: got %v, want %v", result, expected)
	}
}

func TestPerspective(t *testing.T) {
	fov := float32(math.Pi / 4) // 45 degrees
	aspect := float32(1.0)
	near := float32(0.1)
	far := float32(100.0)

	m := Perspective(fov, aspect, near, far)

	// Should be a valid projection matrix (not identity)
	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	// Element [15] should be 0 for perspective projection
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	// Element [11] should be -1 for perspective projection
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAt(t *testing.T) {
	eye := Vec3{0, 0, 5}
	center := Vec3{0, 0, 0}
	up := Vec3{0, 1, 0}

	m := LookAt(eye, center, up)

	// Transform eye position - should result in origin (or close to it)
	// This is a simple sanity check
	if m[15] != 1 {
		t.Errorf("LookAt [15] should be 1, got %f", m[15])
	}
}

func TestScaleBiasMapsClipCube(t *testing.T) {
	sb := ScaleBias()

	lo := sb.TransformPoint([3]float32{-1, -1, -1})
	hi := sb.TransformPoint([3]float32{1, 1, 1})
	if lo != [3]float32{0, 0, 0} {
		t.Errorf("ScaleBias(-1,-1,-1) = %v, want (0, 0, 0)", lo)
	}
	if hi != [3]float32{1, 1, 1} {
		t.Errorf("ScaleBias(1,1,1) = %v, want (1, 1, 1)", hi)
	}
}

func TestScaleBiasReturnsCopy(t *testing.T) {
	sb := ScaleBias()
	sb[0] = 42
	if ScaleBias()[0] != 0.5 {
		t.Error("mutating the returned matrix changed ScaleBias")
	}
}

func TestNegateRow(t *testing.T) {
	m := Translate(1, 2, 3)
	n := m.NegateRow(2)

	if n.Row(2) != (Vec4{0, 0, -1, -3}) {
		t.Errorf("NegateRow(2) row = %v, want (0, 0, -1, -3)", n.Row(2))
	}
	if n.Row(0) != m.Row(0) || n.Row(1) != m.Row(1) || n.Row(3) != m.Row(3) {
		t.Error("NegateRow(2) touched other rows")
	}
	if m[14] != 3 {
		t.Error("NegateRow modified the receiver")
	}
}

func TestOrthoDepthRange(t *testing.T) {
	m := Ortho(-1, 1, -1, 1, 1, 11)

	near := m.TransformPoint([3]float32{0, 0, -1})
	far := m.TransformPoint([3]float32{0, 0, -11})
	if abs(near[2]+1) > 1e-5 || abs(far[2]-1) > 1e-5 {
		t.Errorf("Ortho depth: near=%f far=%f, want -1 and 1", near[2], far[2])
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Perspective(float32(math.Pi/3), 1.5, 0.3, 100).Mul(LookAt(Vec3{1, 2, 3}, Vec3{}, Vec3{Y: 1}))
	if !m.Mul(m.Inverse()).ApproxEqual(Identity(), 1e-4) {
		t.Error("M * M^-1 should be identity")
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
