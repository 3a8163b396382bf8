package shadow

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/engine/gpu/recorder"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/pkg/math"
)

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
	w.Add(
		scene.NewRenderer("ground", scene.Plane(200), math.Identity(), "CustomLit"),
		scene.NewRenderer("box", scene.Cube(1), math.Translate(0, 0.5, -10), "CustomLit"),
	)
	w.AddLight(scene.NewSun(30, 45, math.White, 1, 0.8))
	return w
}

func cullFrame(t *testing.T, w *scene.World, opts recorder.Options) (*recorder.Context, gpu.CullingResults) {
	t.Helper()
	ctx := recorder.New(w, opts)
	res, err := ctx.Cull(testParams())
	if err != nil {
		t.Fatalf("cull: %v", err)
	}
	return ctx, res
}

func TestNormalized(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		check  func(*testing.T, Settings)
	}{
		{
			name:   "cascade count low",
			modify: func(s *Settings) { s.Directional.CascadeCount = 0 },
			check: func(t *testing.T, s Settings) {
				if s.Directional.CascadeCount != 1 {
					t.Errorf("count = %d, want 1", s.Directional.CascadeCount)
				}
			},
		},
		{
			name:   "cascade count high",
			modify: func(s *Settings) { s.Directional.CascadeCount = 9 },
			check: func(t *testing.T, s Settings) {
				if s.Directional.CascadeCount != 4 {
					t.Errorf("count = %d, want 4", s.Directional.CascadeCount)
				}
			},
		},
		{
			name:   "map size rounds up",
			modify: func(s *Settings) { s.Directional.MapSize = 1000 },
			check: func(t *testing.T, s Settings) {
				if s.Directional.MapSize != 1024 {
					t.Errorf("size = %d, want 1024", s.Directional.MapSize)
				}
			},
		},
		{
			name:   "map size bounds",
			modify: func(s *Settings) { s.Directional.MapSize = 20000 },
			check: func(t *testing.T, s Settings) {
				if s.Directional.MapSize != MaxMapSize {
					t.Errorf("size = %d, want %d", s.Directional.MapSize, MaxMapSize)
				}
			},
		},
		{
			name:   "zero cascade fade",
			modify: func(s *Settings) { s.Directional.CascadeFade = 0 },
			check: func(t *testing.T, s Settings) {
				if s.Directional.CascadeFade <= 0 {
					t.Errorf("fade = %f, want > 0", s.Directional.CascadeFade)
				}
			},
		},
		{
			name: "descending ratios",
			modify: func(s *Settings) {
				s.Directional.CascadeRatio1 = 0.5
				s.Directional.CascadeRatio2 = 0.2
				s.Directional.CascadeRatio3 = 1.5
			},
			check: func(t *testing.T, s Settings) {
				r := s.Ratios()
				if r.X != 0.5 || r.Y != 0.5 || r.Z != 1 {
					t.Errorf("ratios = %v, want (0.5, 0.5, 1)", r)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			tt.check(t, s.Normalized())
		})
	}
}

func TestDistanceFadeTermFinite(t *testing.T) {
	for _, fade := range []float32{0, 0.0001, 0.1, 1} {
		s := DefaultSettings()
		s.Directional.CascadeFade = fade
		s.DistanceFade = 0
		s.MaxDistance = 0

		v := s.Normalized().DistanceFadeTerm()
		for i, c := range v {
			if gomath.IsInf(float64(c), 0) || gomath.IsNaN(float64(c)) {
				t.Errorf("fade %f: component %d = %f", fade, i, c)
			}
		}
	}

	v := DefaultSettings().Normalized().DistanceFadeTerm()
	if abs(v[0]-0.01) > 1e-6 || abs(v[1]-10) > 1e-4 || abs(v[2]-1/(1-0.81)) > 1e-3 {
		t.Errorf("DistanceFadeTerm() = %v", v)
	}
}

func TestSetupCommitsGlobals(t *testing.T) {
	ctx, res := cullFrame(t, testWorld(), recorder.Options{})
	globals := &gpu.FrameGlobals{}
	s := New()

	outcome, err := s.Setup(ctx, res, DefaultSettings(), globals)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if outcome != Committed {
		t.Fatalf("outcome = %v, want committed", outcome)
	}

	g := globals.Shadows
	if !g.Valid || g.CascadeCount != 4 || g.Strength != 0.8 {
		t.Errorf("globals = valid %v count %d strength %f", g.Valid, g.CascadeCount, g.Strength)
	}
	for i := 0; i < g.CascadeCount; i++ {
		r2 := g.CullingSpheres[i][3]
		if r2 <= 0 {
			t.Fatalf("cascade %d: squared radius %f", i, r2)
		}
		if abs(g.FadeCoefficients[i]*r2-1) > 1e-5 {
			t.Errorf("cascade %d: fade %f, want 1/%f", i, g.FadeCoefficients[i], r2)
		}
		if i > 0 && r2 < g.CullingSpheres[i-1][3] {
			t.Errorf("cascade %d: radius shrinks", i)
		}

		center := g.Matrices[i].MulVec4(g.CullingSpheres[i].XYZ().Vec4(1))
		for axis := 0; axis < 3; axis++ {
			if center[axis] < 0 || center[axis] > 1 {
				t.Errorf("cascade %d: sphere center samples at %v", i, center)
			}
		}
	}
	if g.CullingSpheres[0][3] >= g.CullingSpheres[3][3] {
		t.Error("first cascade should be strictly smaller than the last")
	}

	if len(ctx.EventsOf(recorder.EventDrawShadows)) != 4 {
		t.Errorf("shadow draws = %d, want 4", len(ctx.EventsOf(recorder.EventDrawShadows)))
	}
	if got := ctx.LiveTargets(); len(got) != 1 || got[0] != MapTarget {
		t.Errorf("LiveTargets = %v, want [%s]", got, MapTarget)
	}
	gets := ctx.Commands(gpu.CmdGetTemporaryRT)
	if len(gets) != 1 || gets[0].Descriptor.Width != 2048 || gets[0].Descriptor.Format != gpu.FormatShadowmap {
		t.Errorf("GetTemporaryRT = %+v", gets)
	}
}

func TestDepthBiasResetAfterEachCascade(t *testing.T) {
	ctx, res := cullFrame(t, testWorld(), recorder.Options{})
	s := New()
	if _, err := s.Setup(ctx, res, DefaultSettings(), &gpu.FrameGlobals{}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	biased := false
	for _, e := range ctx.Events() {
		switch {
		case e.Kind == recorder.EventDrawShadows:
			if e.Bias.SlopeScale != 500000 || e.Bias.Constant != 0 {
				t.Errorf("shadow draw bias = %+v, want slope 500000", e.Bias)
			}
			if !biased {
				t.Error("shadow draw without a fresh bias")
			}
			biased = false
		case e.Kind == recorder.EventCommand && e.Command.Kind == gpu.CmdSetDepthBias:
			biased = !e.Command.Bias.IsZero()
		}
	}

	if biased {
		t.Error("bias left set after the shadow pass")
	}
	events := ctx.Events()
	if last := events[len(events)-1]; !last.Bias.IsZero() {
		t.Errorf("bias after setup = %+v, want zero", last.Bias)
	}
}

func TestNoCastersSkips(t *testing.T) {
	w := testWorld()
	for _, r := range w.Renderers {
		r.CastShadows = false
	}
	ctx, res := cullFrame(t, w, recorder.Options{})

	previous := gpu.ShadowGlobals{Valid: true, CascadeCount: 2, Strength: 0.3}
	globals := &gpu.FrameGlobals{Shadows: previous}
	s := New()

	outcome, err := s.Setup(ctx, res, DefaultSettings(), globals)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if outcome != Skipped {
		t.Errorf("outcome = %v, want skipped", outcome)
	}
	if globals.Shadows != previous {
		t.Errorf("globals changed: %+v", globals.Shadows)
	}
	if err := s.Cleanup(ctx); err != nil {
		t.Errorf("Cleanup: %v", err)
	}
	if ctx.Acquired != 0 || ctx.Released != 0 {
		t.Errorf("acquired/released = %d/%d, want 0/0", ctx.Acquired, ctx.Released)
	}
	if len(ctx.Events()) != 1 {
		t.Errorf("events = %d, want only the cull", len(ctx.Events()))
	}
}

func TestCleanupIdempotent(t *testing.T) {
	ctx, res := cullFrame(t, testWorld(), recorder.Options{})
	s := New()
	if _, err := s.Setup(ctx, res, DefaultSettings(), &gpu.FrameGlobals{}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Cleanup(ctx); err != nil {
			t.Fatalf("Cleanup %d: %v", i, err)
		}
	}
	if ctx.Acquired != 1 || ctx.Released != 1 {
		t.Errorf("acquired/released = %d/%d, want 1/1", ctx.Acquired, ctx.Released)
	}
	if s.Acquired() || len(ctx.LiveTargets()) != 0 {
		t.Error("shadow map still held")
	}
}

func TestSkippedCascadeStillPopulated(t *testing.T) {
	w := scene.NewWorld()
	w.Add(scene.NewRenderer("far box", scene.Cube(1), math.Translate(0, 0.5, -45), "CustomLit"))
	w.AddLight(scene.NewSun(0, 80, math.White, 1, 1))
	ctx, res := cullFrame(t, w, recorder.Options{})

	globals := &gpu.FrameGlobals{}
	outcome, err := New().Setup(ctx, res, DefaultSettings(), globals)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if outcome != Committed {
		t.Fatalf("outcome = %v, want committed", outcome)
	}

	if n := len(ctx.EventsOf(recorder.EventDrawShadows)); n != 2 {
		t.Errorf("shadow draws = %d, want 2", n)
	}
	for i := 0; i < 4; i++ {
		if globals.Shadows.CullingSpheres[i][3] <= 0 {
			t.Errorf("cascade %d: culling sphere not populated", i)
		}
		if globals.Shadows.Matrices[i] == (math.Mat4{}) {
			t.Errorf("cascade %d: matrix not populated", i)
		}
	}
}

func TestReversedZSamplesSameDepth(t *testing.T) {
	stdCtx, stdRes := cullFrame(t, testWorld(), recorder.Options{})
	revCtx, revRes := cullFrame(t, testWorld(), recorder.Options{ReversedZ: true})

	std := &gpu.FrameGlobals{}
	rev := &gpu.FrameGlobals{}
	if _, err := New().Setup(stdCtx, stdRes, DefaultSettings(), std); err != nil {
		t.Fatalf("standard Setup: %v", err)
	}
	if _, err := New().Setup(revCtx, revRes, DefaultSettings(), rev); err != nil {
		t.Fatalf("reversed Setup: %v", err)
	}

	points := []math.Vec3{{X: 0, Y: 0.5, Z: -10}, {X: 3, Y: 0, Z: -2}, {X: -8, Y: 4, Z: -30}}
	for i := 0; i < 4; i++ {
		for _, p := range points {
			a := std.Shadows.Matrices[i].MulVec4(p.Vec4(1))
			b := rev.Shadows.Matrices[i].MulVec4(p.Vec4(1))
			for axis := 0; axis < 3; axis++ {
				if abs(a[axis]-b[axis]) > 1e-5 {
					t.Errorf("cascade %d point %v: %v vs %v", i, p, a, b)
				}
			}
		}
	}

	// the bound projections differ by the depth row
	stdVP := stdCtx.Commands(gpu.CmdSetViewProjection)
	revVP := revCtx.Commands(gpu.CmdSetViewProjection)
	if len(stdVP) != len(revVP) || len(stdVP) == 0 {
		t.Fatalf("view projections = %d vs %d", len(stdVP), len(revVP))
	}
	if !stdVP[0].Projection.ApproxEqual(revVP[0].Projection.NegateRow(2), 1e-6) {
		t.Error("reversed projection is not the depth-negated standard one")
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// collapsedResults reports a zero-radius culling sphere and no casters for
// every cascade.
type collapsedResults struct {
	gpu.CullingResults
}

func (r collapsedResults) ComputeDirectionalShadowMatricesAndCullingPrimitives(
	lightIndex, cascadeIndex, cascadeCount int, ratios math.Vec3, mapSize int, nearPlaneOffset float32,
) (math.Mat4, math.Mat4, gpu.ShadowSplitData, bool) {
	view, proj, _, _ := r.CullingResults.ComputeDirectionalShadowMatricesAndCullingPrimitives(
		lightIndex, cascadeIndex, cascadeCount, ratios, mapSize, nearPlaneOffset)
	return view, proj, gpu.ShadowSplitData{}, false
}

func TestZeroRadiusCascadeFade(t *testing.T) {
	ctx, res := cullFrame(t, testWorld(), recorder.Options{})
	globals := &gpu.FrameGlobals{}

	outcome, err := New().Setup(ctx, collapsedResults{res}, DefaultSettings(), globals)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if outcome != Committed {
		t.Fatalf("outcome = %v, want committed", outcome)
	}

	g := globals.Shadows
	for i := 0; i < g.CascadeCount; i++ {
		fade := g.FadeCoefficients[i]
		if fade != ZeroRadiusFade {
			t.Errorf("cascade %d: fade %g, want %g", i, fade, ZeroRadiusFade)
		}
		if gomath.IsInf(float64(fade), 0) || gomath.IsNaN(float64(fade)) {
			t.Errorf("cascade %d: fade %g not finite", i, fade)
		}
		if g.CullingSpheres[i][3] != 0 {
			t.Errorf("cascade %d: squared radius %f, want 0", i, g.CullingSpheres[i][3])
		}
	}
	if n := len(ctx.EventsOf(recorder.EventDrawShadows)); n != 0 {
		t.Errorf("shadow draws = %d, want none", n)
	}
	if len(ctx.Commands(gpu.CmdSetDepthBias)) != 0 {
		t.Error("depth bias set for cascades without casters")
	}
}

// failingShadowContext fails every shadow draw.
type failingShadowContext struct {
	*recorder.Context
}

func (f *failingShadowContext) DrawShadows(*gpu.ShadowDrawingSettings) error {
	return errors.New("draw failed")
}

func TestFailedCascadeClosesSample(t *testing.T) {
	rec, res := cullFrame(t, testWorld(), recorder.Options{})
	globals := &gpu.FrameGlobals{}
	s := New()

	if _, err := s.Setup(&failingShadowContext{rec}, res, DefaultSettings(), globals); err == nil {
		t.Fatal("Setup should fail")
	}
	if globals.Shadows.Valid {
		t.Error("failed Setup committed globals")
	}
	begins, ends := rec.Commands(gpu.CmdBeginSample), rec.Commands(gpu.CmdEndSample)
	if len(begins) != 1 || len(ends) != 1 || ends[0].Name != bufferName {
		t.Errorf("samples begun %v ended %v", begins, ends)
	}
	if last := rec.Commands(gpu.CmdSetDepthBias); !last[len(last)-1].Bias.IsZero() {
		t.Error("depth bias left set after failed cascade")
	}

	if err := s.Cleanup(rec); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if len(rec.LiveTargets()) != 0 {
		t.Errorf("LiveTargets = %v, want none", rec.LiveTargets())
	}
}
