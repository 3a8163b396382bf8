// Package viewer runs the render pipeline interactively in an SDL window,
// or headless against the recording backend.
package viewer

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/custom-rp/internal/config"
	"github.com/Faultbox/custom-rp/internal/engine/camera"
	"github.com/Faultbox/custom-rp/internal/engine/glrender"
	"github.com/Faultbox/custom-rp/internal/engine/input"
	"github.com/Faultbox/custom-rp/internal/engine/picking"
	"github.com/Faultbox/custom-rp/internal/engine/render"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/internal/engine/window"
	"github.com/Faultbox/custom-rp/internal/logger"
)

// Viewer is the interactive pipeline viewer.
type Viewer struct {
	cfg     *config.Config
	world   *scene.World
	running bool

	window      *window.Window
	input       *input.Input
	ctx         *glrender.Context
	pipeline    *render.Pipeline
	camera      *camera.Camera
	orbit       *camera.OrbitCamera
	screenshots *glrender.ScreenshotCapture
	gizmos      bool
}

// New opens the window and creates the GL backend for world.
func New(cfg *config.Config, world *scene.World) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	v := &Viewer{
		cfg:         cfg,
		world:       world,
		gizmos:      cfg.Pipeline.Gizmos,
		screenshots: glrender.NewScreenshotCapture("screenshots", "custom-rp"),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		VSync:  cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// GL entry points resolve against the window's context.
	if err := gl.Init(); err != nil {
		v.window.Close()
		return nil, fmt.Errorf("OpenGL init failed: %w", err)
	}

	v.ctx, err = glrender.New(world, glrender.Options{Gizmos: v.gizmos})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create GL context: %w", err)
	}

	v.pipeline = render.NewPipeline(world, cfg.RenderSettings())
	v.input = input.New()

	w, h := v.window.Size()
	v.camera = camera.New("Main", w, h)
	v.orbit = camera.NewOrbitCamera()
	v.orbit.FitToBounds(Bounds(world))

	logger.Info("viewer initialized")
	return v, nil
}

// Run renders until the window is closed.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting render loop")

	for v.running {
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		v.orbit.Apply(v.camera)
		if err := v.pipeline.Render(v.ctx, []*camera.Camera{v.camera}); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if v.input.IsKeyPressed(sdl.SCANCODE_F12) {
			v.screenshot()
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.camera.ViewportWidth, v.camera.ViewportHeight = v.window.Size()
		case input.EventDrag:
			v.orbit.HandleDrag(event.DX, event.DY)
		case input.EventWheel:
			v.orbit.HandleZoom(event.DY)
		case input.EventClick:
			v.focus(event.X, event.Y)
		case input.EventKeyDown:
			v.handleKey(event.Key)
		}
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_G:
		v.gizmos = !v.gizmos
		v.ctx.SetGizmos(v.gizmos)
	case sdl.SCANCODE_W:
		v.orbit.HandleMovement(1, 0, 0)
	case sdl.SCANCODE_S:
		v.orbit.HandleMovement(-1, 0, 0)
	case sdl.SCANCODE_A:
		v.orbit.HandleMovement(0, -1, 0)
	case sdl.SCANCODE_D:
		v.orbit.HandleMovement(0, 1, 0)
	case sdl.SCANCODE_1, sdl.SCANCODE_2, sdl.SCANCODE_3, sdl.SCANCODE_4:
		settings := v.pipeline.Settings()
		settings.Shadows.Directional.CascadeCount = int(key-sdl.SCANCODE_1) + 1
		v.pipeline.SetSettings(settings)
		logger.Info("cascade count changed", zap.Int("cascades", settings.Shadows.Directional.CascadeCount))
	}
}

// focus centers the orbit on the renderer under a window position.
func (v *Viewer) focus(x, y int) {
	// Window points may differ from drawable pixels on HiDPI displays.
	sx, sy := v.window.PixelScale()
	viewProj := v.camera.ProjectionMatrix().Mul(v.camera.ViewMatrix())
	ray := picking.ScreenToRay(float32(x)*sx, float32(y)*sy,
		float32(v.camera.ViewportWidth), float32(v.camera.ViewportHeight), viewProj.Inverse())

	rd, _, ok := picking.Pick(ray, v.world.Renderers)
	if !ok {
		return
	}
	v.orbit.Center = rd.Bounds().Center()
	logger.Info("focused", zap.String("renderer", rd.Name))
}

func (v *Viewer) screenshot() {
	pixels, w, h := v.ctx.ReadPixels()
	path, err := v.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close releases GL resources and the window.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.ctx != nil {
		v.ctx.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
