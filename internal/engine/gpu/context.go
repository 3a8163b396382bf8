// Package gpu defines the execution-context contract the render pipeline
// records against: command buffers, culling, draw settings and the
// per-frame shader globals.
//
// Backends (the OpenGL context and the headless recorder) implement Context.
package gpu

import (
	"errors"

	"github.com/Faultbox/custom-rp/pkg/math"
)

var (
	// ErrInvalidTarget is returned when a command references a render
	// target that was never acquired or was already released.
	ErrInvalidTarget = errors.New("gpu: unknown render target")

	// ErrForeignResults is returned when a backend is handed culling
	// results it did not produce.
	ErrForeignResults = errors.New("gpu: culling results from another context")
)

// GizmoSubset selects which editor gizmos to draw.
type GizmoSubset int

const (
	GizmosPreImageEffects GizmoSubset = iota
	GizmosPostImageEffects
)

// CameraProperties is what a context needs to bind a camera as the
// current render target.
type CameraProperties struct {
	Name           string
	Position       math.Vec3
	View           math.Mat4
	Projection     math.Mat4
	ViewportWidth  int
	ViewportHeight int
	Background     math.Color // sRGB

	// Skybox is set when the camera clears to the skybox.
	Skybox bool
}

// Context executes recorded command buffers and draw requests in
// submission order.
type Context interface {
	// Cull computes the visible set for a camera.
	Cull(params CullingParameters) (CullingResults, error)

	// ExecuteCommandBuffer schedules the buffer's commands. The caller may
	// clear and reuse the buffer afterwards.
	ExecuteCommandBuffer(buf *CommandBuffer) error

	DrawRenderers(results CullingResults, drawing *DrawingSettings, filtering FilteringSettings) error
	DrawShadows(settings *ShadowDrawingSettings) error
	DrawSkybox(cam CameraProperties) error

	ShouldRenderGizmos() bool
	DrawGizmos(cam CameraProperties, subset GizmoSubset) error

	// SetupCameraProperties binds the camera target and matrices.
	SetupCameraProperties(cam CameraProperties) error

	// EmitWorldGeometryForSceneView adds editor-only geometry for a scene
	// view camera before culling.
	EmitWorldGeometryForSceneView(cam CameraProperties)

	// UsesReversedZ reports whether depth is stored with near=1, far=0.
	UsesReversedZ() bool

	Submit() error
}
