package cull

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/pkg/math"
)

var testRatios = math.Vec3{X: 0.1, Y: 0.25, Z: 0.5}

func testParams() gpu.CullingParameters {
	pos := math.Vec3{X: 0, Y: 2, Z: 0}
	fwd := math.Vec3{X: 0, Y: 0, Z: -1}
	fov := float32(gomath.Pi / 3)
	aspect := float32(16.0 / 9.0)
	return gpu.CullingParameters{
		CameraPosition: pos,
		CameraForward:  fwd,
		View:           math.LookAt(pos, pos.Add(fwd), math.Vec3{Y: 1}),
		Projection:     math.Perspective(fov, aspect, 0.3, 100),
		FieldOfView:    fov,
		Aspect:         aspect,
		Near:           0.3,
		Far:            100,
		ShadowDistance: 50,
	}
}

func testWorld() *scene.World {
	w := scene.NewWorld()
	ground := scene.NewRenderer("ground", scene.Plane(200), math.Identity(), "CustomLit")
	box := scene.NewRenderer("box", scene.Cube(1), math.Translate(0, 0.5, -10), "CustomLit")
	w.Add(ground, box)
	w.AddLight(scene.NewSun(30, 45, math.White, 1, 1))
	return w
}

func TestFrustumCullsBehindCamera(t *testing.T) {
	w := testWorld()
	behind := scene.NewRenderer("behind", scene.Cube(1), math.Translate(0, 2, 20), "CustomLit")
	w.Add(behind)

	res := Cull(w, testParams(), Options{})
	for _, r := range res.VisibleRenderers() {
		if r.Name == "behind" {
			t.Error("renderer behind the camera was not culled")
		}
	}
	if len(res.VisibleRenderers()) != 2 {
		t.Errorf("visible = %d, want 2", len(res.VisibleRenderers()))
	}
}

func TestSunIsFirstVisibleLight(t *testing.T) {
	w := scene.NewWorld()
	w.AddLight(&scene.Light{Name: "lamp", Type: scene.LightPoint, Position: math.Vec3{Z: -5}, Range: 10})
	w.AddLight(scene.NewSun(0, 60, math.White, 1, 1))

	lights := Cull(w, testParams(), Options{}).VisibleLights()
	if len(lights) != 2 {
		t.Fatalf("lights = %d, want 2", len(lights))
	}
	if lights[0].Light.Name != "Sun" {
		t.Errorf("lights[0] = %q, want Sun", lights[0].Light.Name)
	}
}

func TestCascadeRadiiNonDecreasing(t *testing.T) {
	res := Cull(testWorld(), testParams(), Options{})

	for count := 1; count <= 4; count++ {
		prev := float32(0)
		for i := 0; i < count; i++ {
			_, _, split, _ := res.ComputeDirectionalShadowMatricesAndCullingPrimitives(0, i, count, testRatios, 2048, 0)
			r := split.CullingSphere[3]
			if r < prev-1e-4 {
				t.Errorf("count %d: cascade %d radius %f < previous %f", count, i, r, prev)
			}
			prev = r
		}
	}
}

func TestCascadeSphereEnclosesFrustumSlice(t *testing.T) {
	p := testParams()
	res := Cull(testWorld(), p, Options{})

	tests := []struct {
		name    string
		cascade int
		far     float32
	}{
		{"first", 0, 5},
		{"second", 1, 12.5},
		{"last", 3, 50},
	}

	tanHalf := float32(gomath.Tan(float64(p.FieldOfView) / 2))
	right := math.Vec3{X: 1}
	up := math.Vec3{Y: 1}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, split, _ := res.ComputeDirectionalShadowMatricesAndCullingPrimitives(0, tt.cascade, 4, testRatios, 2048, 0)
			sphere := math.Sphere{Center: split.CullingSphere.XYZ(), Radius: split.CullingSphere[3] * 1.0001}

			for _, z := range []float32{p.Near, tt.far} {
				hh := z * tanHalf
				hw := hh * p.Aspect
				for _, sx := range []float32{-1, 1} {
					for _, sy := range []float32{-1, 1} {
						corner := p.CameraPosition.Add(p.CameraForward.Scale(z)).
							Add(right.Scale(sx * hw)).Add(up.Scale(sy * hh))
						if !sphere.Contains(corner) {
							t.Errorf("corner %v at depth %f outside sphere %v", corner, z, sphere)
						}
					}
				}
			}
		})
	}
}

func TestSamplingMapsSphereIntoUnitCube(t *testing.T) {
	res := Cull(testWorld(), testParams(), Options{})

	for i := 0; i < 4; i++ {
		view, proj, split, ok := res.ComputeDirectionalShadowMatricesAndCullingPrimitives(0, i, 4, testRatios, 1024, 2)
		if !ok {
			t.Fatalf("cascade %d: no casters", i)
		}
		m := math.ScaleBias().Mul(proj).Mul(view)

		c := split.CullingSphere.XYZ()
		r := split.CullingSphere[3] * 0.999
		points := []math.Vec3{
			c,
			c.Add(math.Vec3{X: r}), c.Add(math.Vec3{X: -r}),
			c.Add(math.Vec3{Y: r}), c.Add(math.Vec3{Y: -r}),
			c.Add(math.Vec3{Z: r}), c.Add(math.Vec3{Z: -r}),
		}
		for _, pt := range points {
			s := m.MulVec4(pt.Vec4(1))
			for axis := 0; axis < 3; axis++ {
				if s[axis] < -1e-4 || s[axis] > 1+1e-4 {
					t.Errorf("cascade %d: %v maps to %v, axis %d outside [0,1]", i, pt, s, axis)
				}
			}
		}
	}
}

func TestReversedZNegatesDepthRow(t *testing.T) {
	std := Cull(testWorld(), testParams(), Options{})
	rev := Cull(testWorld(), testParams(), Options{ReversedZ: true})

	for i := 0; i < 4; i++ {
		v1, p1, s1, _ := std.ComputeDirectionalShadowMatricesAndCullingPrimitives(0, i, 4, testRatios, 2048, 0)
		v2, p2, s2, _ := rev.ComputeDirectionalShadowMatricesAndCullingPrimitives(0, i, 4, testRatios, 2048, 0)
		if !v1.ApproxEqual(v2, 1e-6) {
			t.Errorf("cascade %d: views differ", i)
		}
		if s1 != s2 {
			t.Errorf("cascade %d: split data differ", i)
		}
		if !p1.ApproxEqual(p2.NegateRow(2), 1e-6) {
			t.Errorf("cascade %d: reversed projection is not the depth-negated standard one", i)
		}
	}
}

func TestNoCasters(t *testing.T) {
	w := testWorld()
	for _, r := range w.Renderers {
		r.CastShadows = false
	}
	res := Cull(w, testParams(), Options{})

	if _, ok := res.ShadowCasterBounds(0); ok {
		t.Error("ShadowCasterBounds reported casters")
	}
	for i := 0; i < 4; i++ {
		_, proj, split, ok := res.ComputeDirectionalShadowMatricesAndCullingPrimitives(0, i, 4, testRatios, 2048, 0)
		if ok {
			t.Errorf("cascade %d: ok without casters", i)
		}
		if split.CullingSphere[3] <= 0 {
			t.Errorf("cascade %d: split data not populated", i)
		}
		for _, v := range proj {
			if gomath.IsNaN(float64(v)) || gomath.IsInf(float64(v), 0) {
				t.Fatalf("cascade %d: projection not finite: %v", i, proj)
			}
		}
	}
}

func TestShadowCasterBounds(t *testing.T) {
	tests := []struct {
		name   string
		at     math.Mat4
		inside bool
	}{
		{"in range", math.Translate(0, 0.5, -10), true},
		{"far away", math.Translate(500, 0, 500), false},
		{"towards the light", math.Translate(20, 60, 20), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := scene.NewWorld()
			w.AddLight(scene.NewSun(45, 70, math.White, 1, 1))
			w.Add(scene.NewRenderer("c", scene.Cube(1), tt.at, "CustomLit"))

			_, ok := Cull(w, testParams(), Options{}).ShadowCasterBounds(0)
			if ok != tt.inside {
				t.Errorf("ok = %v, want %v", ok, tt.inside)
			}
		})
	}
}

func TestShadowCasterBoundsRequiresShadowLight(t *testing.T) {
	w := testWorld()
	w.Sun.ShadowStrength = 0
	res := Cull(w, testParams(), Options{})

	if _, ok := res.ShadowCasterBounds(0); ok {
		t.Error("light with zero strength reported casters")
	}
	if _, ok := res.ShadowCasterBounds(5); ok {
		t.Error("out of range light index reported casters")
	}
}

func TestSelect(t *testing.T) {
	w := scene.NewWorld()
	near := scene.NewRenderer("near", scene.Cube(1), math.Translate(0, 2, -5), "CustomLit")
	far := scene.NewRenderer("far", scene.Cube(1), math.Translate(0, 2, -20), "SRPDefaultUnlit")
	glassNear := scene.NewRenderer("glassNear", scene.Cube(1), math.Translate(1, 2, -6), "CustomLit")
	glassNear.Queue = scene.QueueTransparent
	glassFar := scene.NewRenderer("glassFar", scene.Cube(1), math.Translate(1, 2, -30), "CustomLit")
	glassFar.Queue = scene.QueueTransparent
	legacy := scene.NewRenderer("legacy", scene.Cube(1), math.Translate(-1, 2, -8), "ForwardBase")
	w.Add(far, near, glassNear, glassFar, legacy)

	p := testParams()
	res := Cull(w, p, Options{})

	names := func(rs []*scene.Renderer) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.Name)
		}
		return out
	}
	equal := func(a, b []string) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	drawing := gpu.NewDrawingSettings("SRPDefaultUnlit", gpu.SortingSettings{
		Criteria:       gpu.SortCommonOpaque,
		CameraPosition: p.CameraPosition,
	})
	drawing.SetShaderPassName(1, "CustomLit")

	got := names(res.Select(&drawing, gpu.FilteringSettings{QueueRange: gpu.QueueRangeOpaque}))
	if want := []string{"near", "far"}; !equal(got, want) {
		t.Errorf("opaque = %v, want %v", got, want)
	}

	drawing.Sorting.Criteria = gpu.SortCommonTransparent
	got = names(res.Select(&drawing, gpu.FilteringSettings{QueueRange: gpu.QueueRangeTransparent}))
	if want := []string{"glassFar", "glassNear"}; !equal(got, want) {
		t.Errorf("transparent = %v, want %v", got, want)
	}

	unsupported := gpu.NewDrawingSettings("ForwardBase", gpu.SortingSettings{})
	got = names(res.Select(&unsupported, gpu.DefaultFiltering()))
	if want := []string{"legacy"}; !equal(got, want) {
		t.Errorf("unsupported = %v, want %v", got, want)
	}
}
