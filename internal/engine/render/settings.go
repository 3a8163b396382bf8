package render

import (
	"sync"

	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/engine/shadow"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// legacyTags are built-in shader passes the pipeline does not support.
// Renderers using them are drawn with the error material.
var legacyTags = []gpu.ShaderTagID{
	"ForwardBase",
	"Always",
	"PrepassBase",
	"Vertex",
	"VertexLMRGBM",
	"VertexLM",
}

// LegacyTags returns the unsupported shader passes.
func LegacyTags() []gpu.ShaderTagID {
	return append([]gpu.ShaderTagID(nil), legacyTags...)
}

var (
	errorMaterialOnce sync.Once
	errorMaterial     *gpu.Material
)

// ErrorMaterial returns the shared magenta error material, creating it on
// first use.
func ErrorMaterial() *gpu.Material {
	errorMaterialOnce.Do(func() {
		errorMaterial = &gpu.Material{
			Name:  gpu.ErrorMaterialName,
			Color: math.Color{R: 1, G: 0, B: 1, A: 1},
		}
	})
	return errorMaterial
}

// Settings configure the pipeline.
type Settings struct {
	DynamicBatching bool            `yaml:"dynamic_batching"`
	GPUInstancing   bool            `yaml:"gpu_instancing"`
	Shadows         shadow.Settings `yaml:"shadows"`
}

// DefaultSettings enables batching and instancing with default shadows.
func DefaultSettings() Settings {
	return Settings{
		DynamicBatching: true,
		GPUInstancing:   true,
		Shadows:         shadow.DefaultSettings(),
	}
}
