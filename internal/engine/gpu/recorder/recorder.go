// Package recorder provides a headless gpu.Context that executes command
// buffers against an in-memory state machine and records every operation.
//
// It backs the pipeline tests and the viewer's headless mode.
package recorder

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/custom-rp/internal/engine/cull"
	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/internal/logger"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// ErrNotCulled is returned when a draw is issued before Cull in a frame.
var ErrNotCulled = errors.New("recorder: draw before cull")

// EventKind identifies a recorded operation.
type EventKind int

const (
	EventCommand EventKind = iota
	EventCull
	EventEmitSceneGeometry
	EventSetupCamera
	EventDrawRenderers
	EventDrawShadows
	EventDrawSkybox
	EventDrawGizmos
	EventSubmit
)

var eventNames = [...]string{
	EventCommand:           "Command",
	EventCull:              "Cull",
	EventEmitSceneGeometry: "EmitSceneGeometry",
	EventSetupCamera:       "SetupCamera",
	EventDrawRenderers:     "DrawRenderers",
	EventDrawShadows:       "DrawShadows",
	EventDrawSkybox:        "DrawSkybox",
	EventDrawGizmos:        "DrawGizmos",
	EventSubmit:            "Submit",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "Unknown"
}

// Event is one recorded operation with the context state active when it
// ran.
type Event struct {
	Kind EventKind

	// Command events.
	Buffer  string
	Command gpu.Command

	// State at the time of the event.
	Target gpu.RenderTargetID
	Bias   gpu.DepthBias
	View   math.Mat4
	Proj   math.Mat4

	// Params are the culling parameters of a Cull event.
	Params gpu.CullingParameters

	// Draw events.
	Renderers  []string
	PassTags   []gpu.ShaderTagID
	Override   string
	Sorting    gpu.SortingCriteria
	Batching   bool
	Instancing bool
	Split      gpu.ShadowSplitData
	Camera     string
	Subset     gpu.GizmoSubset

	// Globals is a snapshot of the frame globals passed with a draw.
	Globals    gpu.FrameGlobals
	HasGlobals bool
}

// Options configure the recorder.
type Options struct {
	ReversedZ bool
	Gizmos    bool
}

// Context is a recording gpu.Context. It is not safe for concurrent use.
type Context struct {
	world *scene.World
	opts  Options

	events  []Event
	target  gpu.RenderTargetID
	bias    gpu.DepthBias
	view    math.Mat4
	proj    math.Mat4
	live    map[gpu.RenderTargetID]gpu.RenderTextureDescriptor
	samples []string
	culled  bool

	// Acquired and Released count temporary render target operations
	// over the lifetime of the context.
	Acquired int
	Released int
	// Frames counts calls to Submit.
	Frames int
}

var _ gpu.Context = (*Context)(nil)

// New creates a recorder that culls world.
func New(world *scene.World, opts Options) *Context {
	return &Context{
		world: world,
		opts:  opts,
		view:  math.Identity(),
		proj:  math.Identity(),
		live:  make(map[gpu.RenderTargetID]gpu.RenderTextureDescriptor),
	}
}

// SetWorld replaces the world culled by subsequent frames.
func (c *Context) SetWorld(world *scene.World) {
	c.world = world
}

func (c *Context) record(e Event) {
	e.Target = c.target
	e.Bias = c.bias
	e.View = c.view
	e.Proj = c.proj
	c.events = append(c.events, e)
}

// Cull culls the recorder's world. It starts a frame, so samples left open
// by a failed frame are dropped.
func (c *Context) Cull(params gpu.CullingParameters) (gpu.CullingResults, error) {
	if c.world == nil {
		return nil, errors.New("recorder: no world to cull")
	}
	if len(c.samples) > 0 {
		logger.Warn("recorder: dropping samples left open by the previous frame", zap.Strings("samples", c.samples))
		c.samples = c.samples[:0]
	}
	res := cull.Cull(c.world, params, cull.Options{ReversedZ: c.opts.ReversedZ})
	c.culled = true
	c.record(Event{Kind: EventCull, Params: params})
	return res, nil
}

// ExecuteCommandBuffer applies each command to the recorder state.
func (c *Context) ExecuteCommandBuffer(buf *gpu.CommandBuffer) error {
	for _, cmd := range buf.Commands() {
		if err := c.execute(cmd); err != nil {
			return fmt.Errorf("execute %s (%s): %w", buf.Name, cmd.Kind, err)
		}
		c.record(Event{Kind: EventCommand, Buffer: buf.Name, Command: cmd})
	}
	return nil
}

func (c *Context) execute(cmd gpu.Command) error {
	switch cmd.Kind {
	case gpu.CmdBeginSample:
		c.samples = append(c.samples, cmd.Name)

	case gpu.CmdEndSample:
		if len(c.samples) == 0 || c.samples[len(c.samples)-1] != cmd.Name {
			return fmt.Errorf("unbalanced sample %q", cmd.Name)
		}
		c.samples = c.samples[:len(c.samples)-1]

	case gpu.CmdGetTemporaryRT:
		if cmd.Target == gpu.CameraTarget {
			return fmt.Errorf("%w: temporary target needs an id", gpu.ErrInvalidTarget)
		}
		if cmd.Descriptor.Width <= 0 || cmd.Descriptor.Height <= 0 {
			return fmt.Errorf("invalid size %dx%d", cmd.Descriptor.Width, cmd.Descriptor.Height)
		}
		if _, ok := c.live[cmd.Target]; ok {
			return fmt.Errorf("%s already acquired", cmd.Target)
		}
		c.live[cmd.Target] = cmd.Descriptor
		c.Acquired++

	case gpu.CmdReleaseTemporaryRT:
		if _, ok := c.live[cmd.Target]; !ok {
			return nil
		}
		delete(c.live, cmd.Target)
		c.Released++
		if c.target == cmd.Target {
			c.target = gpu.CameraTarget
		}

	case gpu.CmdSetRenderTarget:
		if _, ok := c.live[cmd.Target]; !ok && cmd.Target != gpu.CameraTarget {
			return fmt.Errorf("%w: %s", gpu.ErrInvalidTarget, cmd.Target)
		}
		c.target = cmd.Target

	case gpu.CmdSetViewProjection:
		c.view = cmd.View
		c.proj = cmd.Projection

	case gpu.CmdSetDepthBias:
		c.bias = cmd.Bias
	}
	return nil
}

func (c *Context) results(r gpu.CullingResults) (*cull.Results, error) {
	if !c.culled {
		return nil, ErrNotCulled
	}
	res, ok := r.(*cull.Results)
	if !ok {
		return nil, gpu.ErrForeignResults
	}
	return res, nil
}

// DrawRenderers records the renderers the batch selects.
func (c *Context) DrawRenderers(r gpu.CullingResults, drawing *gpu.DrawingSettings, filtering gpu.FilteringSettings) error {
	res, err := c.results(r)
	if err != nil {
		return err
	}

	e := Event{
		Kind:       EventDrawRenderers,
		PassTags:   slices.Clone(drawing.PassTags),
		Sorting:    drawing.Sorting.Criteria,
		Batching:   drawing.EnableDynamicBatching,
		Instancing: drawing.EnableInstancing,
	}
	for _, rd := range res.Select(drawing, filtering) {
		e.Renderers = append(e.Renderers, rd.Name)
	}
	if drawing.OverrideMaterial != nil {
		e.Override = drawing.OverrideMaterial.Name
	}
	if drawing.Globals != nil {
		e.Globals = *drawing.Globals
		e.HasGlobals = true
	}
	c.record(e)
	return nil
}

// DrawShadows records the casters of one cascade. A shadow target must be
// bound.
func (c *Context) DrawShadows(settings *gpu.ShadowDrawingSettings) error {
	res, err := c.results(settings.Results)
	if err != nil {
		return err
	}
	if c.target == gpu.CameraTarget {
		return fmt.Errorf("%w: shadow draw into camera target", gpu.ErrInvalidTarget)
	}

	e := Event{Kind: EventDrawShadows, Split: settings.SplitData}
	for _, rd := range res.CastersForSplit(settings.LightIndex, settings.SplitData) {
		e.Renderers = append(e.Renderers, rd.Name)
	}
	c.record(e)
	return nil
}

// DrawSkybox records a skybox draw.
func (c *Context) DrawSkybox(cam gpu.CameraProperties) error {
	c.record(Event{Kind: EventDrawSkybox, Camera: cam.Name})
	return nil
}

// ShouldRenderGizmos reports the Gizmos option.
func (c *Context) ShouldRenderGizmos() bool {
	return c.opts.Gizmos
}

// DrawGizmos records a gizmo draw.
func (c *Context) DrawGizmos(cam gpu.CameraProperties, subset gpu.GizmoSubset) error {
	c.record(Event{Kind: EventDrawGizmos, Camera: cam.Name, Subset: subset})
	return nil
}

// SetupCameraProperties binds the camera target and matrices.
func (c *Context) SetupCameraProperties(cam gpu.CameraProperties) error {
	c.target = gpu.CameraTarget
	c.view = cam.View
	c.proj = cam.Projection
	c.record(Event{Kind: EventSetupCamera, Camera: cam.Name})
	return nil
}

// EmitWorldGeometryForSceneView records the request.
func (c *Context) EmitWorldGeometryForSceneView(cam gpu.CameraProperties) {
	c.record(Event{Kind: EventEmitSceneGeometry, Camera: cam.Name})
}

// UsesReversedZ reports the ReversedZ option.
func (c *Context) UsesReversedZ() bool {
	return c.opts.ReversedZ
}

// Submit ends the frame. Profiling samples must be balanced.
func (c *Context) Submit() error {
	if len(c.samples) > 0 {
		open := slices.Clone(c.samples)
		c.samples = c.samples[:0]
		return fmt.Errorf("recorder: submit with open samples %v", open)
	}
	c.record(Event{Kind: EventSubmit})
	c.Frames++
	c.culled = false

	logger.Debug("frame submitted",
		zap.Int("frame", c.Frames),
		zap.Int("events", len(c.events)),
		zap.Int("liveTargets", len(c.live)))
	return nil
}

// Events returns every recorded event.
func (c *Context) Events() []Event {
	return c.events
}

// EventsOf returns the recorded events of one kind.
func (c *Context) EventsOf(kind EventKind) []Event {
	var out []Event
	for _, e := range c.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Commands returns the executed commands of one kind.
func (c *Context) Commands(kind gpu.CommandKind) []gpu.Command {
	var out []gpu.Command
	for _, e := range c.events {
		if e.Kind == EventCommand && e.Command.Kind == kind {
			out = append(out, e.Command)
		}
	}
	return out
}

// LiveTargets returns the temporary targets currently acquired, sorted.
func (c *Context) LiveTargets() []gpu.RenderTargetID {
	out := make([]gpu.RenderTargetID, 0, len(c.live))
	for id := range c.live {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Reset drops recorded events. Targets, counters and state are kept.
func (c *Context) Reset() {
	c.events = c.events[:0]
}
