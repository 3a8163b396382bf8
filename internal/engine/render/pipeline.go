package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/custom-rp/internal/engine/camera"
	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/internal/logger"
)

// Pipeline renders a world through a list of cameras, one at a time.
// Each camera name gets its own CameraRenderer, so frame globals never
// leak between cameras. It is not safe for concurrent use.
type Pipeline struct {
	world     *scene.World
	settings  Settings
	renderers map[string]*CameraRenderer
}

// WorldContext is a gpu.Context that culls a world of its own.
type WorldContext interface {
	gpu.Context
	SetWorld(*scene.World)
}

// NewPipeline creates a pipeline lit by world's sun. world must be the world
// the rendering context culls; use SetWorld to replace both together.
func NewPipeline(world *scene.World, settings Settings) *Pipeline {
	return &Pipeline{
		world:     world,
		settings:  settings,
		renderers: make(map[string]*CameraRenderer),
	}
}

// Settings returns the current settings.
func (p *Pipeline) Settings() Settings {
	return p.settings
}

// SetSettings replaces the settings used from the next frame on.
func (p *Pipeline) SetSettings(s Settings) {
	p.settings = s
}

// SetWorld replaces the rendered world on the pipeline and on ctx, so the
// sun that lights a frame is always the one ctx culls.
func (p *Pipeline) SetWorld(ctx WorldContext, w *scene.World) {
	ctx.SetWorld(w)
	p.world = w
}

// CameraRenderer returns the renderer for a camera name, creating it.
func (p *Pipeline) CameraRenderer(name string) *CameraRenderer {
	r, ok := p.renderers[name]
	if !ok {
		r = NewCameraRenderer()
		p.renderers[name] = r
	}
	return r
}

// Render renders every camera in order. A failing camera does not stop the
// others; the first error is returned.
func (p *Pipeline) Render(ctx gpu.Context, cameras []*camera.Camera) error {
	var first error
	for _, cam := range cameras {
		outcome, err := p.CameraRenderer(cam.Name).Render(ctx, cam, p.world.Sun, p.settings)
		if err != nil {
			logger.Error("camera render failed", zap.String("camera", cam.Name), zap.Error(err))
			if first == nil {
				first = fmt.Errorf("camera %s: %w", cam.Name, err)
			}
			continue
		}
		logger.Debug("camera rendered", zap.String("camera", cam.Name), zap.Stringer("outcome", outcome))
	}
	return first
}
