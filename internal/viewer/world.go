package viewer

import (
	"fmt"

	"github.com/Faultbox/custom-rp/internal/config"
	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/engine/render"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// BuildWorld creates the world described by cfg: the glTF model when one
// is configured, otherwise the demo scene. The sun always comes from cfg.
func BuildWorld(cfg config.SceneConfig) (*scene.World, error) {
	w := scene.NewWorld()
	w.AddLight(scene.NewSun(cfg.SunLongitude, cfg.SunLatitude, cfg.SunColor, cfg.SunIntensity, cfg.ShadowStrength))

	if cfg.GLTF == "" {
		addDemoScene(w)
		return w, nil
	}

	renderers, err := scene.LoadGLTF(cfg.GLTF, string(gpu.TagLit))
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	w.Add(renderers...)
	return w, nil
}

// addDemoScene fills w with a ground plane and a few objects covering
// every draw batch of the pipeline.
func addDemoScene(w *scene.World) {
	lit := string(gpu.TagLit)

	ground := scene.NewRenderer("Ground", scene.Plane(60), math.Identity(), lit)
	ground.Color = math.Color{R: 0.55, G: 0.55, B: 0.5, A: 1}
	ground.CastShadows = false
	w.Add(ground)

	cube := scene.Cube(2)
	for i := 0; i < 5; i++ {
		x := float32(i-2) * 4
		h := float32(i + 1)
		r := scene.NewRenderer(fmt.Sprintf("Pillar%d", i), cube,
			math.Translate(x, h, -2).Mul(math.Scale(1, h, 1)), lit)
		r.Color = math.Color{R: 0.8, G: 0.3 + 0.1*float32(i), B: 0.2, A: 1}
		w.Add(r)
	}

	glass := scene.NewRenderer("Glass", cube, math.Translate(0, 1.5, 4).Mul(math.Scale(3, 1.5, 0.2)), string(gpu.TagUnlit))
	glass.Queue = scene.QueueTransparent
	glass.Color = math.Color{R: 0.4, G: 0.7, B: 1, A: 0.35}
	glass.CastShadows = false
	w.Add(glass)

	marker := scene.NewRenderer("Marker", cube, math.Translate(-8, 0.5, 6).Mul(math.Scale(0.5, 0.5, 0.5)), string(gpu.TagUnlit))
	marker.Color = math.Color{R: 1, G: 1, B: 0.2, A: 1}
	w.Add(marker)

	// Drawn with the error material.
	legacy := scene.NewRenderer("Legacy", cube, math.Translate(8, 1, 6), string(render.LegacyTags()[0]))
	w.Add(legacy)
}

// Bounds returns the bounds of every renderer in w.
func Bounds(w *scene.World) math.AABB {
	b := math.EmptyAABB()
	for _, r := range w.Renderers {
		b = b.Encapsulate(r.Bounds())
	}
	return b
}
