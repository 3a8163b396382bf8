// Package render implements the per-camera frame orchestration of the
// forward pipeline.
package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/custom-rp/internal/engine/camera"
	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/engine/lighting"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/internal/logger"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// Outcome reports what happened to a camera's frame.
type Outcome int

const (
	// Skipped means the camera had no valid frustum; nothing was recorded.
	Skipped Outcome = iota
	// Rendered means the frame was submitted.
	Rendered
)

func (o Outcome) String() string {
	if o == Rendered {
		return "rendered"
	}
	return "skipped"
}

// CameraRenderer renders one camera. It owns the camera's command buffer,
// lighting pass and frame globals, which persist across frames.
// It is not safe for concurrent use.
type CameraRenderer struct {
	buf      *gpu.CommandBuffer
	lighting *lighting.Lighting
	globals  gpu.FrameGlobals
	sampling bool
}

// NewCameraRenderer creates a renderer for one camera.
func NewCameraRenderer() *CameraRenderer {
	return &CameraRenderer{
		buf:      gpu.NewCommandBuffer("Render Camera"),
		lighting: lighting.New(),
	}
}

// Globals returns the renderer's frame globals.
func (r *CameraRenderer) Globals() *gpu.FrameGlobals {
	return &r.globals
}

// Render records and submits one frame for cam:
// cull, lighting and shadows, camera setup, opaque, skybox, transparent,
// unsupported, gizmos, cleanup, submit.
//
// The shadow map is released before Submit on every path that reaches it,
// and on error paths as well.
func (r *CameraRenderer) Render(ctx gpu.Context, cam *camera.Camera, sun *scene.Light, settings Settings) (outcome Outcome, err error) {
	r.buf.Name = cam.Name

	r.prepareSceneView(ctx, cam)

	results, ok, err := r.cull(ctx, cam, settings.Shadows.MaxDistance)
	if err != nil {
		return Skipped, fmt.Errorf("cull %s: %w", cam.Name, err)
	}
	if !ok {
		logger.Debug("camera skipped: no valid frustum", zap.String("camera", cam.Name))
		return Skipped, nil
	}

	cleaned := false
	defer func() {
		if err != nil {
			r.endSample(ctx)
		}
		if cleaned {
			return
		}
		if cerr := r.lighting.Cleanup(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := r.setup(ctx, cam, results, sun, settings); err != nil {
		return Skipped, err
	}
	if err := r.drawVisibleGeometry(ctx, cam, results, settings); err != nil {
		return Skipped, err
	}
	if err := r.drawUnsupportedShaders(ctx, results); err != nil {
		return Skipped, err
	}
	if err := r.drawGizmos(ctx, cam); err != nil {
		return Skipped, err
	}

	cleaned = true
	if err := r.lighting.Cleanup(ctx); err != nil {
		return Skipped, err
	}
	if err := r.submit(ctx); err != nil {
		return Skipped, err
	}
	return Rendered, nil
}

func (r *CameraRenderer) prepareSceneView(ctx gpu.Context, cam *camera.Camera) {
	if cam.Type == camera.TypeSceneView {
		ctx.EmitWorldGeometryForSceneView(cam.Properties())
	}
}

func (r *CameraRenderer) cull(ctx gpu.Context, cam *camera.Camera, maxShadowDistance float32) (gpu.CullingResults, bool, error) {
	params, ok := cam.CullingParameters()
	if !ok {
		return nil, false, nil
	}
	params.ShadowDistance = min(maxShadowDistance, cam.Far)

	results, err := ctx.Cull(params)
	if err != nil {
		return nil, false, err
	}
	return results, true, nil
}

func (r *CameraRenderer) setup(ctx gpu.Context, cam *camera.Camera, results gpu.CullingResults, sun *scene.Light, settings Settings) error {
	r.buf.BeginSample(r.buf.Name)
	if err := r.execute(ctx); err != nil {
		return err
	}
	r.sampling = true
	outcome, err := r.lighting.Setup(ctx, results, sun, settings.Shadows, &r.globals)
	if err != nil {
		return fmt.Errorf("lighting %s: %w", cam.Name, err)
	}
	logger.Debug("lighting ready", zap.String("camera", cam.Name), zap.Stringer("shadows", outcome))
	r.buf.EndSample(r.buf.Name)
	if err := r.execute(ctx); err != nil {
		return err
	}
	r.sampling = false

	// the shadow pass leaves its own target bound
	if err := ctx.SetupCameraProperties(cam.Properties()); err != nil {
		return fmt.Errorf("setup camera %s: %w", cam.Name, err)
	}
	flags := cam.ClearFlags
	var clearColor math.Color
	if flags == camera.ClearColor {
		clearColor = cam.Background.Linear()
	}
	r.buf.ClearRenderTarget(flags <= camera.ClearDepth, flags == camera.ClearColor, clearColor)
	r.buf.BeginSample(r.buf.Name)
	if err := r.execute(ctx); err != nil {
		return err
	}
	r.sampling = true
	return nil
}

func (r *CameraRenderer) drawVisibleGeometry(ctx gpu.Context, cam *camera.Camera, results gpu.CullingResults, settings Settings) error {
	drawing := gpu.NewDrawingSettings(gpu.TagUnlit, gpu.SortingSettings{
		Criteria:       gpu.SortCommonOpaque,
		CameraPosition: cam.Position,
	})
	drawing.SetShaderPassName(1, gpu.TagLit)
	drawing.EnableDynamicBatching = settings.DynamicBatching
	drawing.EnableInstancing = settings.GPUInstancing
	drawing.Globals = &r.globals
	filtering := gpu.FilteringSettings{QueueRange: gpu.QueueRangeOpaque}

	if err := ctx.DrawRenderers(results, &drawing, filtering); err != nil {
		return fmt.Errorf("draw opaque: %w", err)
	}

	if err := ctx.DrawSkybox(cam.Properties()); err != nil {
		return fmt.Errorf("draw skybox: %w", err)
	}

	drawing.Sorting.Criteria = gpu.SortCommonTransparent
	filtering.QueueRange = gpu.QueueRangeTransparent
	if err := ctx.DrawRenderers(results, &drawing, filtering); err != nil {
		return fmt.Errorf("draw transparent: %w", err)
	}
	return nil
}

func (r *CameraRenderer) drawUnsupportedShaders(ctx gpu.Context, results gpu.CullingResults) error {
	drawing := gpu.NewDrawingSettings(legacyTags[0], gpu.SortingSettings{})
	for i := 1; i < len(legacyTags); i++ {
		drawing.SetShaderPassName(i, legacyTags[i])
	}
	drawing.OverrideMaterial = ErrorMaterial()
	drawing.Globals = &r.globals

	if err := ctx.DrawRenderers(results, &drawing, gpu.DefaultFiltering()); err != nil {
		return fmt.Errorf("draw unsupported: %w", err)
	}
	return nil
}

func (r *CameraRenderer) drawGizmos(ctx gpu.Context, cam *camera.Camera) error {
	if !ctx.ShouldRenderGizmos() {
		return nil
	}
	props := cam.Properties()
	if err := ctx.DrawGizmos(props, gpu.GizmosPreImageEffects); err != nil {
		return fmt.Errorf("draw gizmos: %w", err)
	}
	if err := ctx.DrawGizmos(props, gpu.GizmosPostImageEffects); err != nil {
		return fmt.Errorf("draw gizmos: %w", err)
	}
	return nil
}

func (r *CameraRenderer) submit(ctx gpu.Context) error {
	r.buf.EndSample(r.buf.Name)
	if err := r.execute(ctx); err != nil {
		return err
	}
	r.sampling = false
	if err := ctx.Submit(); err != nil {
		return fmt.Errorf("submit %s: %w", r.buf.Name, err)
	}
	return nil
}

// endSample closes the camera sample a failed frame left open, so the
// next frame on the same context starts balanced.
func (r *CameraRenderer) endSample(ctx gpu.Context) {
	if !r.sampling {
		return
	}
	r.sampling = false
	r.buf.Clear()
	r.buf.EndSample(r.buf.Name)
	if err := r.execute(ctx); err != nil {
		logger.Warn("camera sample not closed", zap.String("camera", r.buf.Name), zap.Error(err))
	}
}

func (r *CameraRenderer) execute(ctx gpu.Context) error {
	defer r.buf.Clear()
	if err := ctx.ExecuteCommandBuffer(r.buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
