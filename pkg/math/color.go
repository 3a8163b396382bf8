package math

import gomath "math"

// Color is an RGBA color with float components.
type Color struct {
	R, G, B, A float32
}

// White is opaque white.
var White = Color{1, 1, 1, 1}

// Linear converts the color from sRGB gamma space to linear space.
// Alpha is left untouched.
func (c Color) Linear() Color {
	return Color{
		R: srgbToLinear(c.R),
		G: srgbToLinear(c.G),
		B: srgbToLinear(c.B),
		A: c.A,
	}
}

// Scale multiplies the RGB channels by s.
func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A}
}

// Vec4 returns the color as (r, g, b, a).
func (c Color) Vec4() Vec4 {
	return Vec4{c.R, c.G, c.B, c.A}
}

func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(gomath.Pow((float64(v)+0.055)/1.055, 2.4))
}
