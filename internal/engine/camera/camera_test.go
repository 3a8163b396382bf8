package camera

import (
	"testing"

	"github.com/Faultbox/custom-rp/pkg/math"
)

func near(a, b math.Vec3, eps float32) bool {
	return a.Sub(b).Length() <= eps
}

func TestCullingParametersValidity(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Camera)
		ok     bool
	}{
		{"default", func(*Camera) {}, true},
		{"zero width", func(c *Camera) { c.ViewportWidth = 0 }, false},
		{"zero height", func(c *Camera) { c.ViewportHeight = 0 }, false},
		{"zero fov", func(c *Camera) { c.FieldOfView = 0 }, false},
		{"near zero", func(c *Camera) { c.Near = 0 }, false},
		{"far before near", func(c *Camera) { c.Far = c.Near / 2 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New("Main", 1280, 720)
			tt.modify(cam)
			params, ok := cam.CullingParameters()
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && params.Far != cam.Far {
				t.Errorf("far = %f, want %f", params.Far, cam.Far)
			}
		})
	}
}

func TestDefaultForward(t *testing.T) {
	cam := New("Main", 800, 600)
	if got := cam.Forward(); !near(got, math.Vec3{Z: -1}, 1e-5) {
		t.Errorf("Forward() = %v, want (0,0,-1)", got)
	}
	if got := cam.Aspect(); got < 1.333 || got > 1.334 {
		t.Errorf("Aspect() = %f, want 4/3", got)
	}
}

func TestOrbitApplyLooksAtCenter(t *testing.T) {
	orbit := NewOrbitCamera()
	orbit.Center = math.Vec3{X: 3, Y: 1, Z: -2}
	orbit.RotationX = 0.4
	orbit.RotationY = 1.1

	cam := New("Main", 800, 600)
	orbit.Apply(cam)

	want := orbit.Center.Sub(cam.Position).Normalize()
	if got := cam.Forward(); !near(got, want, 1e-4) {
		t.Errorf("Forward() = %v, want %v", got, want)
	}

	// the center projects to the middle of the viewport
	clip := cam.ProjectionMatrix().Mul(cam.ViewMatrix()).MulVec4(orbit.Center.Vec4(1))
	if abs32(clip[0]/clip[3]) > 1e-4 || abs32(clip[1]/clip[3]) > 1e-4 {
		t.Errorf("center maps to %v, want screen center", clip)
	}
}

func TestOrbitZoomClamp(t *testing.T) {
	orbit := NewOrbitCamera()
	for i := 0; i < 100; i++ {
		orbit.HandleZoom(1)
	}
	if orbit.Distance != orbit.MinDistance {
		t.Errorf("Distance = %f, want %f", orbit.Distance, orbit.MinDistance)
	}
	for i := 0; i < 200; i++ {
		orbit.HandleZoom(-1)
	}
	if orbit.Distance != orbit.MaxDistance {
		t.Errorf("Distance = %f, want %f", orbit.Distance, orbit.MaxDistance)
	}
}

func TestOrbitFitToBounds(t *testing.T) {
	orbit := NewOrbitCamera()
	orbit.FitToBounds(math.AABB{Min: math.Vec3{X: -2, Y: 0, Z: -2}, Max: math.Vec3{X: 2, Y: 2, Z: 2}})

	if !near(orbit.Center, math.Vec3{Y: 1}, 1e-6) {
		t.Errorf("Center = %v, want (0,1,0)", orbit.Center)
	}
	if orbit.Distance < 2*orbit.MinDistance {
		t.Errorf("Distance = %f, too close", orbit.Distance)
	}

	before := *orbit
	orbit.FitToBounds(math.EmptyAABB())
	if *orbit != before {
		t.Error("empty bounds changed the orbit")
	}
}
