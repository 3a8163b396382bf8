// Package config handles viewer configuration loading and management.
package config

import (
	"github.com/Faultbox/custom-rp/internal/engine/render"
	"github.com/Faultbox/custom-rp/internal/engine/shadow"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig    `yaml:"window"`
	Pipeline PipelineConfig  `yaml:"pipeline"`
	Shadows  shadow.Settings `yaml:"shadows"`
	Scene    SceneConfig     `yaml:"scene"`
	Logging  LoggingConfig   `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	VSync  bool   `yaml:"vsync"`

	// Headless renders Frames frames into the recording backend instead of
	// opening a window.
	Headless bool `yaml:"headless"`
	Frames   int  `yaml:"frames"`
}

// PipelineConfig holds render pipeline toggles.
type PipelineConfig struct {
	DynamicBatching bool `yaml:"dynamic_batching"`
	GPUInstancing   bool `yaml:"gpu_instancing"`
	Gizmos          bool `yaml:"gizmos"`
	// ReversedZ applies to the headless backend only.
	ReversedZ bool `yaml:"reversed_z"`
}

// SceneConfig describes what to render.
type SceneConfig struct {
	// GLTF is an optional model to load instead of the demo scene.
	GLTF string `yaml:"gltf"`

	SunLongitude   float32    `yaml:"sun_longitude"`
	SunLatitude    float32    `yaml:"sun_latitude"`
	SunColor       math.Color `yaml:"sun_color"`
	SunIntensity   float32    `yaml:"sun_intensity"`
	ShadowStrength float32    `yaml:"shadow_strength"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Custom RP",
			Width:  1280,
			Height: 720,
			VSync:  true,
			Frames: 1,
		},
		Pipeline: PipelineConfig{
			DynamicBatching: true,
			GPUInstancing:   true,
			Gizmos:          false,
		},
		Shadows: shadow.DefaultSettings(),
		Scene: SceneConfig{
			SunLongitude:   30,
			SunLatitude:    50,
			SunColor:       math.Color{R: 1, G: 0.96, B: 0.84, A: 1},
			SunIntensity:   1,
			ShadowStrength: 1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// RenderSettings returns the pipeline settings the config describes.
func (c *Config) RenderSettings() render.Settings {
	return render.Settings{
		DynamicBatching: c.Pipeline.DynamicBatching,
		GPUInstancing:   c.Pipeline.GPUInstancing,
		Shadows:         c.Shadows,
	}
}
