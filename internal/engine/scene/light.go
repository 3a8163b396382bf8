package scene

import (
	gomath "math"

	"github.com/Faultbox/custom-rp/pkg/math"
)

// LightType identifies how a light emits.
type LightType int

const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
)

func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// Light is a scene light.
type Light struct {
	Name      string
	Type      LightType
	Color     math.Color // sRGB
	Intensity float32

	// Rotation orients the light; a directional light travels along
	// Rotation applied to math.Forward.
	Rotation math.Quat
	Position math.Vec3 // point and spot lights only
	Range    float32   // point and spot lights only

	CastShadows    bool
	ShadowStrength float32 // 0 = no shadow, 1 = full shadow

	// ShadowNearPlane pulls the shadow camera back towards the light.
	ShadowNearPlane float32
}

// Forward returns the direction the light travels in world space.
func (l *Light) Forward() math.Vec3 {
	return l.Rotation.Rotate(math.Forward).Normalize()
}

// NewSun creates a shadow-casting directional light from sun angles.
// Longitude is rotation around Y (degrees), latitude is elevation above the
// horizon (degrees).
func NewSun(longitude, latitude float32, color math.Color, intensity, shadowStrength float32) *Light {
	toSun := SunDirection(longitude, latitude)
	return &Light{
		Name:            "Sun",
		Type:            LightDirectional,
		Color:           color,
		Intensity:       intensity,
		Rotation:        math.QuatLookRotation(toSun.Neg()),
		CastShadows:     true,
		ShadowStrength:  shadowStrength,
		ShadowNearPlane: 0.2,
	}
}

// SunDirection converts longitude/latitude angles in degrees to a normalized
// vector pointing towards the sun.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lonRad := float64(longitude) * gomath.Pi / 180.0
	latRad := float64(latitude) * gomath.Pi / 180.0

	return math.Vec3{
		X: float32(gomath.Cos(latRad) * gomath.Sin(lonRad)),
		Y: float32(gomath.Sin(latRad)),
		Z: float32(gomath.Cos(latRad) * gomath.Cos(lonRad)),
	}
}
