package gpu

import (
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// CullingParameters describe the camera frustum to cull against.
type CullingParameters struct {
	CameraPosition math.Vec3
	CameraForward  math.Vec3
	View           math.Mat4
	Projection     math.Mat4

	FieldOfView float32 // vertical, radians
	Aspect      float32
	Near        float32
	Far         float32

	// ShadowDistance limits how far from the camera shadows are computed.
	ShadowDistance float32
}

// VisibleLight is a light that survived culling.
type VisibleLight struct {
	Light *scene.Light
}

// ShadowSplitData is the culling primitive of one shadow cascade.
type ShadowSplitData struct {
	// CullingSphere holds the sphere center in xyz and its radius in w.
	CullingSphere math.Vec4
}

// CullingResults is the read-only visible set for one camera and frame.
type CullingResults interface {
	VisibleRenderers() []*scene.Renderer
	VisibleLights() []VisibleLight

	// ShadowCasterBounds returns the bounds of all shadow casters that can
	// affect the camera for the visible light at lightIndex. ok is false
	// when there are none.
	ShadowCasterBounds(lightIndex int) (bounds math.AABB, ok bool)

	// ComputeDirectionalShadowMatricesAndCullingPrimitives returns the
	// light view and projection for one cascade and its culling sphere.
	// The projection follows the context's depth convention. ok is false
	// when no caster contributes to the cascade; the matrices and split
	// data are still valid in that case.
	ComputeDirectionalShadowMatricesAndCullingPrimitives(
		lightIndex, cascadeIndex, cascadeCount int,
		ratios math.Vec3, mapSize int, nearPlaneOffset float32,
	) (view, proj math.Mat4, split ShadowSplitData, ok bool)
}
