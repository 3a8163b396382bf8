// Package scene holds the renderable world the pipeline draws: meshes,
// renderers, lights and the designated sun.
package scene

// World is the set of renderers and lights handed to the pipeline.
type World struct {
	Renderers []*Renderer
	Lights    []*Light

	// Sun is the primary directional light. The pipeline reads exactly this
	// light for direct lighting and shadows.
	Sun *Light
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{}
}

// Add appends renderers to the world.
func (w *World) Add(renderers ...*Renderer) {
	w.Renderers = append(w.Renderers, renderers...)
}

// AddLight appends a light. The first directional light added becomes the
// sun unless one is already set.
func (w *World) AddLight(l *Light) {
	w.Lights = append(w.Lights, l)
	if w.Sun == nil && l.Type == LightDirectional {
		w.Sun = l
	}
}

// Find returns the first renderer with the given name.
func (w *World) Find(name string) *Renderer {
	for _, r := range w.Renderers {
		if r.Name == name {
			return r
		}
	}
	return nil
}
