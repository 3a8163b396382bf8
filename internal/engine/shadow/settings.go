package shadow

import (
	"math/bits"

	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// Map size limits in texels.
const (
	MinMapSize = 256
	MaxMapSize = 8192
)

// Directional configures the directional shadow map.
type Directional struct {
	MapSize      int `yaml:"map_size"`
	CascadeCount int `yaml:"cascade_count"`

	// CascadeRatio1..3 are the far distances of cascades 0..2 as fractions
	// of the shadow distance. The last cascade always reaches 1.
	CascadeRatio1 float32 `yaml:"cascade_ratio_1"`
	CascadeRatio2 float32 `yaml:"cascade_ratio_2"`
	CascadeRatio3 float32 `yaml:"cascade_ratio_3"`

	// CascadeFade is the fraction of the last cascade used to fade out.
	CascadeFade float32 `yaml:"cascade_fade"`
}

// Bias is the depth bias applied while drawing casters.
type Bias struct {
	Constant   float32 `yaml:"constant"`
	SlopeScale float32 `yaml:"slope_scale"`
}

// Settings configure cascaded directional shadows.
type Settings struct {
	MaxDistance  float32     `yaml:"max_distance"`
	DistanceFade float32     `yaml:"distance_fade"`
	Directional  Directional `yaml:"directional"`
	Bias         Bias        `yaml:"bias"`
}

// DefaultSettings returns four cascades over 100 units.
func DefaultSettings() Settings {
	return Settings{
		MaxDistance:  100,
		DistanceFade: 0.1,
		Directional: Directional{
			MapSize:       2048,
			CascadeCount:  4,
			CascadeRatio1: 0.1,
			CascadeRatio2: 0.25,
			CascadeRatio3: 0.5,
			CascadeFade:   0.1,
		},
		Bias: Bias{Constant: 0, SlopeScale: 500000},
	}
}

// Normalized returns s with every value clamped into its usable range.
// Cascade ratios are made ascending.
func (s Settings) Normalized() Settings {
	s.MaxDistance = max(s.MaxDistance, 0.001)
	s.DistanceFade = clamp(s.DistanceFade, 0.001, 1)

	d := &s.Directional
	d.MapSize = mapSize(d.MapSize)
	d.CascadeCount = min(max(d.CascadeCount, 1), gpu.MaxCascades)
	d.CascadeRatio1 = clamp(d.CascadeRatio1, 0, 1)
	d.CascadeRatio2 = clamp(d.CascadeRatio2, d.CascadeRatio1, 1)
	d.CascadeRatio3 = clamp(d.CascadeRatio3, d.CascadeRatio2, 1)
	d.CascadeFade = clamp(d.CascadeFade, 0.001, 1)
	return s
}

// Ratios returns the cascade split ratios.
func (s Settings) Ratios() math.Vec3 {
	return math.Vec3{
		X: s.Directional.CascadeRatio1,
		Y: s.Directional.CascadeRatio2,
		Z: s.Directional.CascadeRatio3,
	}
}

// DistanceFadeTerm returns (1/maxDistance, 1/distanceFade, 1/(1-f*f), 0)
// with f = 1 - cascadeFade. s must be normalized.
func (s Settings) DistanceFadeTerm() math.Vec4 {
	f := 1 - s.Directional.CascadeFade
	return math.Vec4{
		1 / s.MaxDistance,
		1 / s.DistanceFade,
		1 / (1 - f*f),
		0,
	}
}

// mapSize rounds n up to a power of two within [MinMapSize, MaxMapSize].
func mapSize(n int) int {
	if n <= MinMapSize {
		return MinMapSize
	}
	if n >= MaxMapSize {
		return MaxMapSize
	}
	return 1 << bits.Len(uint(n-1))
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
