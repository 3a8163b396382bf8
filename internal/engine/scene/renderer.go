package scene

import "github.com/Faultbox/custom-rp/pkg/math"

// Render queue values. Lower queues draw first.
const (
	QueueBackground  = 1000
	QueueGeometry    = 2000
	QueueAlphaTest   = 2450
	QueueTransparent = 3000
	QueueOverlay     = 4000
)

// Renderer places a mesh in the world with a material pass.
type Renderer struct {
	Name      string
	Mesh      *Mesh
	Transform math.Mat4

	// PassTag is the shader pass the material provides, e.g. "CustomLit".
	PassTag string
	Queue   int
	Color   math.Color

	CastShadows bool
}

// NewRenderer creates an opaque, shadow-casting renderer.
func NewRenderer(name string, mesh *Mesh, transform math.Mat4, passTag string) *Renderer {
	return &Renderer{
		Name:        name,
		Mesh:        mesh,
		Transform:   transform,
		PassTag:     passTag,
		Queue:       QueueGeometry,
		Color:       math.White,
		CastShadows: true,
	}
}

// Bounds returns the world-space bounds of the renderer.
func (r *Renderer) Bounds() math.AABB {
	if r.Mesh == nil {
		return math.EmptyAABB()
	}
	return r.Mesh.Bounds.Transform(r.Transform)
}
