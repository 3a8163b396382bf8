package math

import "testing"

func TestColorLinear(t *testing.T) {
	c := Color{R: 0, G: 1, B: 0.5, A: 0.25}.Linear()

	if c.R != 0 || abs(c.G-1) > 1e-5 {
		t.Errorf("Linear endpoints: got R=%f G=%f, want 0 and 1", c.R, c.G)
	}
	// sRGB 0.5 is about 0.214 linear
	if abs(c.B-0.214) > 0.001 {
		t.Errorf("Linear(0.5) = %f, want ~0.214", c.B)
	}
	if c.A != 0.25 {
		t.Errorf("alpha changed to %f", c.A)
	}
}

func TestColorScale(t *testing.T) {
	c := Color{R: 0.5, G: 0.25, B: 1, A: 1}.Scale(2)
	if c != (Color{R: 1, G: 0.5, B: 2, A: 1}) {
		t.Errorf("Scale = %+v", c)
	}
}
