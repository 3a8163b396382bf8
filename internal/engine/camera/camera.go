// Package camera provides the pipeline camera and an orbit controller for
// the viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// Type distinguishes game cameras from the editor scene view.
type Type int

const (
	TypeGame Type = iota
	TypeSceneView
)

// ClearFlags select what a camera clears before drawing. Lower values
// clear more.
type ClearFlags int

const (
	ClearSkybox ClearFlags = iota + 1
	ClearColor
	ClearDepth
	ClearNothing
)

func (f ClearFlags) String() string {
	switch f {
	case ClearSkybox:
		return "skybox"
	case ClearColor:
		return "color"
	case ClearDepth:
		return "depth"
	case ClearNothing:
		return "nothing"
	default:
		return "unknown"
	}
}

// Camera is a perspective camera.
type Camera struct {
	Name string
	Type Type

	Position math.Vec3
	Rotation math.Quat

	FieldOfView float32 // vertical, radians
	Near        float32
	Far         float32

	ViewportWidth  int
	ViewportHeight int

	ClearFlags ClearFlags
	Background math.Color // sRGB
}

// New creates a game camera at the origin looking down -Z.
func New(name string, width, height int) *Camera {
	return &Camera{
		Name:           name,
		Type:           TypeGame,
		Rotation:       math.QuatIdentity(),
		FieldOfView:    float32(gomath.Pi / 3),
		Near:           0.3,
		Far:            1000,
		ViewportWidth:  width,
		ViewportHeight: height,
		ClearFlags:     ClearSkybox,
		Background:     math.Color{R: 0.19, G: 0.3, B: 0.47, A: 1},
	}
}

// Forward returns the viewing direction.
func (c *Camera) Forward() math.Vec3 {
	return c.Rotation.Rotate(math.Forward).Normalize()
}

// Aspect returns the viewport aspect ratio.
func (c *Camera) Aspect() float32 {
	if c.ViewportHeight <= 0 {
		return 0
	}
	return float32(c.ViewportWidth) / float32(c.ViewportHeight)
}

// ViewMatrix returns the world-to-view matrix. The camera never rolls.
func (c *Camera) ViewMatrix() math.Mat4 {
	fwd := c.Forward()
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	if abs32(fwd.Y) > 0.999 {
		up = c.Rotation.Rotate(math.Vec3{Y: 1})
	}
	return math.LookAt(c.Position, c.Position.Add(fwd), up)
}

// ProjectionMatrix returns the OpenGL-convention perspective projection.
func (c *Camera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FieldOfView, c.Aspect(), c.Near, c.Far)
}

// Valid reports whether the camera can produce a frustum.
func (c *Camera) Valid() bool {
	return c.ViewportWidth > 0 && c.ViewportHeight > 0 &&
		c.FieldOfView > 0 && c.FieldOfView < gomath.Pi &&
		c.Near > 0 && c.Far > c.Near
}

// CullingParameters returns the frustum to cull with. ok is false when the
// camera has no valid frustum, e.g. a zero-sized viewport. ShadowDistance is
// left at zero for the caller to set.
func (c *Camera) CullingParameters() (gpu.CullingParameters, bool) {
	if !c.Valid() {
		return gpu.CullingParameters{}, false
	}
	return gpu.CullingParameters{
		CameraPosition: c.Position,
		CameraForward:  c.Forward(),
		View:           c.ViewMatrix(),
		Projection:     c.ProjectionMatrix(),
		FieldOfView:    c.FieldOfView,
		Aspect:         c.Aspect(),
		Near:           c.Near,
		Far:            c.Far,
	}, true
}

// Properties returns what a context needs to bind the camera.
func (c *Camera) Properties() gpu.CameraProperties {
	return gpu.CameraProperties{
		Name:           c.Name,
		Position:       c.Position,
		View:           c.ViewMatrix(),
		Projection:     c.ProjectionMatrix(),
		ViewportWidth:  c.ViewportWidth,
		ViewportHeight: c.ViewportHeight,
		Background:     c.Background,
		Skybox:         c.ClearFlags == ClearSkybox,
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
