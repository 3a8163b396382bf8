package viewer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/custom-rp/internal/config"
	"github.com/Faultbox/custom-rp/internal/engine/camera"
	"github.com/Faultbox/custom-rp/internal/engine/gpu/recorder"
	"github.com/Faultbox/custom-rp/internal/engine/render"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/internal/logger"
)

// orbitStep is the drag applied between headless frames, in pixels.
const orbitStep = 40

// Report summarizes a headless run.
type Report struct {
	Frames        int
	DrawBatches   int
	ShadowDraws   int
	Acquired      int
	Released      int
	LiveTargets   int
	CascadeCount  int
	ShadowsActive bool
}

// RunHeadless renders cfg.Window.Frames frames of world into the recording
// backend, orbiting the camera between frames.
func RunHeadless(cfg *config.Config, world *scene.World) (Report, error) {
	ctx := recorder.New(world, recorder.Options{
		ReversedZ: cfg.Pipeline.ReversedZ,
		Gizmos:    cfg.Pipeline.Gizmos,
	})
	pipeline := render.NewPipeline(world, cfg.RenderSettings())

	cam := camera.New("Main", cfg.Window.Width, cfg.Window.Height)
	orbit := camera.NewOrbitCamera()
	orbit.FitToBounds(Bounds(world))

	for i := 0; i < cfg.Window.Frames; i++ {
		orbit.Apply(cam)
		if err := pipeline.Render(ctx, []*camera.Camera{cam}); err != nil {
			return Report{}, fmt.Errorf("frame %d: %w", i, err)
		}
		orbit.HandleDrag(orbitStep, 0)
	}

	globals := pipeline.CameraRenderer(cam.Name).Globals()
	report := Report{
		Frames:        ctx.Frames,
		DrawBatches:   len(ctx.EventsOf(recorder.EventDrawRenderers)),
		ShadowDraws:   len(ctx.EventsOf(recorder.EventDrawShadows)),
		Acquired:      ctx.Acquired,
		Released:      ctx.Released,
		LiveTargets:   len(ctx.LiveTargets()),
		CascadeCount:  globals.Shadows.CascadeCount,
		ShadowsActive: globals.Shadows.Valid,
	}

	logger.Info("headless run finished",
		zap.Int("frames", report.Frames),
		zap.Int("drawBatches", report.DrawBatches),
		zap.Int("shadowDraws", report.ShadowDraws),
		zap.Int("acquired", report.Acquired),
		zap.Int("released", report.Released),
		zap.Bool("shadows", report.ShadowsActive),
	)
	return report, nil
}
