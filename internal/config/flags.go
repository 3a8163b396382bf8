package config

import "flag"

var (
	flagConfig         = flag.String("config", "", "Path to config file")
	flagDebug          = flag.Bool("debug", false, "Enable debug logging")
	flagHeadless       = flag.Bool("headless", false, "Render into the recording backend without a window")
	flagFrames         = flag.Int("frames", 0, "Number of frames to render in headless mode")
	flagWidth          = flag.Int("width", 0, "Window width")
	flagHeight         = flag.Int("height", 0, "Window height")
	flagShadowDistance = flag.Float64("shadow-distance", 0, "Maximum shadow distance")
	flagCascades       = flag.Int("cascades", 0, "Shadow cascade count (1-4)")
	flagGLTF           = flag.String("gltf", "", "glTF model to render")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Pipeline.Gizmos = true
	}
	if *flagHeadless {
		cfg.Window.Headless = true
	}
	if *flagFrames > 0 {
		cfg.Window.Frames = *flagFrames
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagShadowDistance > 0 {
		cfg.Shadows.MaxDistance = float32(*flagShadowDistance)
	}
	if *flagCascades > 0 {
		cfg.Shadows.Directional.CascadeCount = *flagCascades
	}
	if *flagGLTF != "" {
		cfg.Scene.GLTF = *flagGLTF
	}
}
