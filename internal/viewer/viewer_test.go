package viewer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/custom-rp/internal/config"
	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/engine/render"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
)

func TestBuildWorldDemo(t *testing.T) {
	cfg := config.Default()
	w, err := BuildWorld(cfg.Scene)
	if err != nil {
		t.Fatalf("BuildWorld: %v", err)
	}

	if w.Sun == nil || w.Sun.Type != scene.LightDirectional {
		t.Fatal("demo world has no directional sun")
	}
	if w.Sun.Intensity != cfg.Scene.SunIntensity || w.Sun.ShadowStrength != cfg.Scene.ShadowStrength {
		t.Errorf("sun does not follow config: %+v", w.Sun)
	}

	var lit, transparent, legacy, casters int
	for _, r := range w.Renderers {
		switch r.PassTag {
		case string(gpu.TagLit):
			lit++
		case string(render.LegacyTags()[0]):
			legacy++
		}
		if r.Queue == scene.QueueTransparent {
			transparent++
		}
		if r.CastShadows {
			casters++
		}
	}
	if lit == 0 || transparent == 0 || legacy == 0 || casters == 0 {
		t.Errorf("demo world misses a batch: lit=%d transparent=%d legacy=%d casters=%d",
			lit, transparent, legacy, casters)
	}
	if w.Find("Ground").CastShadows {
		t.Error("ground plane should not cast shadows")
	}
}

func TestBuildWorldBadGLTF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.gltf")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Scene.GLTF = path
	if _, err := BuildWorld(cfg.Scene); err == nil {
		t.Error("expected error for a broken glTF file")
	}
}

func TestBounds(t *testing.T) {
	if !Bounds(scene.NewWorld()).IsEmpty() {
		t.Error("empty world should have empty bounds")
	}

	w, err := BuildWorld(config.Default().Scene)
	if err != nil {
		t.Fatal(err)
	}
	b := Bounds(w)
	if b.Min.X > -30 || b.Max.X < 30 {
		t.Errorf("bounds %+v do not cover the ground plane", b)
	}
}

func TestRunHeadless(t *testing.T) {
	cfg := config.Default()
	cfg.Window.Headless = true
	cfg.Window.Frames = 6

	w, err := BuildWorld(cfg.Scene)
	if err != nil {
		t.Fatal(err)
	}

	report, err := RunHeadless(cfg, w)
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}

	if report.Frames != 6 {
		t.Errorf("Frames = %d, want 6", report.Frames)
	}
	// opaque, transparent and unsupported per frame
	if report.DrawBatches != 18 {
		t.Errorf("DrawBatches = %d, want 18", report.DrawBatches)
	}
	if !report.ShadowsActive || report.CascadeCount != 4 {
		t.Errorf("shadows not committed: active=%v cascades=%d", report.ShadowsActive, report.CascadeCount)
	}
	if report.ShadowDraws == 0 {
		t.Error("no shadow draws recorded")
	}
	if report.Acquired != 6 || report.Released != 6 || report.LiveTargets != 0 {
		t.Errorf("shadow map leaked: acquired=%d released=%d live=%d",
			report.Acquired, report.Released, report.LiveTargets)
	}
}

func TestRunHeadlessReversedZ(t *testing.T) {
	cfg := config.Default()
	cfg.Window.Frames = 2
	cfg.Pipeline.ReversedZ = true
	cfg.Pipeline.Gizmos = true
	cfg.Shadows.Directional.CascadeCount = 2

	w, err := BuildWorld(cfg.Scene)
	if err != nil {
		t.Fatal(err)
	}

	report, err := RunHeadless(cfg, w)
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if report.CascadeCount != 2 {
		t.Errorf("CascadeCount = %d, want 2", report.CascadeCount)
	}
	if report.Released != report.Acquired {
		t.Errorf("acquired %d, released %d", report.Acquired, report.Released)
	}
}
