package gpu

import "github.com/Faultbox/custom-rp/pkg/math"

// MaxCascades is the number of cascade slots shaders reserve.
const MaxCascades = 4

// Shader property identifiers. Shaders bind these by name, so they must not
// change between frames or releases.
const (
	PropLightDirection            = "_WorldSpaceLightPos0"
	PropLightColor                = "unity_LightColor0"
	PropDirectionalShadowMap      = "_DirectionalShadowMap"
	PropDirectionalShadowMatrices = "_DirectionalShadowMatrices"
	PropShadowStrength            = "_DirectionalShadowStrength"
	PropCascadeCount              = "_CascadeCount"
	PropCascadeCullingSpheres     = "_CascadeCullingSpheres"
	PropCascadeData               = "_CascadeData"
	PropShadowDistanceFade        = "_ShadowDistanceFade"
)

// DirectionalLightGlobals carry the primary directional light.
type DirectionalLightGlobals struct {
	// Direction points towards the light, w = 0.
	Direction math.Vec4
	// Color is linear color multiplied by intensity.
	Color math.Vec4
}

// ShadowGlobals carry the cascaded shadow parameters. The shadow pass
// replaces the whole value at once. Valid is false until the first
// committed shadow pass.
type ShadowGlobals struct {
	Valid        bool
	Strength     float32
	CascadeCount int

	// Matrices map world space to shadow-map texture space.
	Matrices [MaxCascades]math.Mat4
	// CullingSpheres hold center in xyz and squared radius in w.
	CullingSpheres [MaxCascades]math.Vec4
	// FadeCoefficients are 1/squaredRadius per cascade.
	FadeCoefficients [MaxCascades]float32

	// DistanceFade is (1/maxDistance, 1/distanceFade, 1/(1-f*f), 0)
	// with f = 1 - cascadeFade.
	DistanceFade math.Vec4
}

// FrameGlobals are the shader globals written during lighting setup and
// read by every draw of the frame.
type FrameGlobals struct {
	DirectionalLight DirectionalLightGlobals
	Shadows          ShadowGlobals
}
