// Package glrender implements gpu.Context on OpenGL 4.1 core.
//
// The context owns GL state for the frame: temporary depth targets, mesh
// buffers and the built-in programs. It must be created and used on the
// thread that owns the GL context, after gl.Init.
package glrender

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/custom-rp/internal/engine/cull"
	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/internal/logger"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// ErrNotCulled is returned when a draw is issued before Cull in a frame.
var ErrNotCulled = errors.New("glrender: draw before cull")

// shadowMapTarget is the temporary target lit programs sample. Its id is
// the shader property it binds to.
const shadowMapTarget = gpu.RenderTargetID(gpu.PropDirectionalShadowMap)

// shadowMapUnit is the texture unit of the shadow map.
const shadowMapUnit = 0

// DefaultSlopeBiasScale converts pipeline slope-scale bias to
// glPolygonOffset factor units.
const DefaultSlopeBiasScale = 1e-5

// Options configure the GL context.
type Options struct {
	Gizmos bool

	// SlopeBiasScale multiplies DepthBias.SlopeScale before it reaches
	// glPolygonOffset. Zero selects DefaultSlopeBiasScale.
	SlopeBiasScale float32
}

// Context is an OpenGL gpu.Context. It is not safe for concurrent use.
type Context struct {
	world *scene.World
	opts  Options
	log   *zap.Logger

	lit       *program
	unlit     *program
	errorProg *program
	caster    *program
	sky       *program
	line      *program

	meshes  *meshCache
	lines   *lineBatch
	targets *targetPool
	skyVAO  uint32

	target  gpu.RenderTargetID
	camera  gpu.CameraProperties
	view    math.Mat4
	proj    math.Mat4
	bias    gpu.DepthBias
	samples []string
	results *cull.Results
	globals *gpu.FrameGlobals
	frames  int
}

var _ gpu.Context = (*Context)(nil)

// New compiles the built-in programs and returns a context drawing world.
func New(world *scene.World, opts Options) (*Context, error) {
	if opts.SlopeBiasScale == 0 {
		opts.SlopeBiasScale = DefaultSlopeBiasScale
	}
	c := &Context{
		world:   world,
		opts:    opts,
		log:     logger.Named("glrender"),
		meshes:  newMeshCache(),
		targets: newTargetPool(),
		view:    math.Identity(),
		proj:    math.Identity(),
	}

	specs := []struct {
		dst      **program
		name     string
		vertex   string
		fragment string
	}{
		{&c.lit, string(gpu.TagLit), meshVertexSrc, litFragmentSrc},
		{&c.unlit, string(gpu.TagUnlit), meshVertexSrc, unlitFragmentSrc},
		{&c.errorProg, gpu.ErrorMaterialName, meshVertexSrc, unlitFragmentSrc},
		{&c.caster, "ShadowCaster", meshVertexSrc, shadowCasterFragmentSrc},
		{&c.sky, "Skybox", skyVertexSrc, skyFragmentSrc},
		{&c.line, "Gizmos", lineVertexSrc, unlitFragmentSrc},
	}
	for _, s := range specs {
		p, err := newProgram(s.name, s.vertex, s.fragment)
		if err != nil {
			c.Close()
			return nil, err
		}
		*s.dst = p
	}

	c.lines = newLineBatch()
	gl.GenVertexArrays(1, &c.skyVAO)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)

	c.log.Info("GL context ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return c, nil
}

// SetWorld replaces the world culled by subsequent frames.
func (c *Context) SetWorld(world *scene.World) {
	c.world = world
}

// Close releases every GL object owned by the context.
func (c *Context) Close() {
	for _, p := range []*program{c.lit, c.unlit, c.errorProg, c.caster, c.sky, c.line} {
		if p != nil {
			p.delete()
		}
	}
	c.meshes.close()
	c.targets.close()
	if c.lines != nil {
		c.lines.close()
	}
	if c.skyVAO != 0 {
		gl.DeleteVertexArrays(1, &c.skyVAO)
		c.skyVAO = 0
	}
}

// Cull culls the context's world on the CPU.
func (c *Context) Cull(params gpu.CullingParameters) (gpu.CullingResults, error) {
	if c.world == nil {
		return nil, errors.New("glrender: no world to cull")
	}
	c.results = cull.Cull(c.world, params, cull.Options{ReversedZ: c.UsesReversedZ()})
	return c.results, nil
}

// ExecuteCommandBuffer applies each command to GL state.
func (c *Context) ExecuteCommandBuffer(buf *gpu.CommandBuffer) error {
	for _, cmd := range buf.Commands() {
		if err := c.execute(cmd); err != nil {
			return fmt.Errorf("execute %s (%s): %w", buf.Name, cmd.Kind, err)
		}
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
		if _, err := c.targets.acquire(cmd.Target, cmd.Descriptor); err != nil {
			return err
		}

	case gpu.CmdReleaseTemporaryRT:
		if c.targets.release(cmd.Target) && c.target == cmd.Target {
			c.bindCamera()
		}

	case gpu.CmdSetRenderTarget:
		if cmd.Target == gpu.CameraTarget {
			c.bindCamera()
			return nil
		}
		t, ok := c.targets.get(cmd.Target)
		if !ok {
			return fmt.Errorf("%w: %s", gpu.ErrInvalidTarget, cmd.Target)
		}
		t.bind()
		// Back faces only in the depth pass.
		gl.CullFace(gl.FRONT)
		c.target = cmd.Target

	case gpu.CmdClearRenderTarget:
		var mask uint32
		if cmd.ClearDepth {
			gl.DepthMask(true)
			gl.ClearDepth(1)
			mask |= gl.DEPTH_BUFFER_BIT
		}
		if cmd.ClearColor && c.target == gpu.CameraTarget {
			gl.ClearColor(cmd.Color.R, cmd.Color.G, cmd.Color.B, cmd.Color.A)
			mask |= gl.COLOR_BUFFER_BIT
		}
		if mask != 0 {
			gl.Clear(mask)
		}

	case gpu.CmdSetViewProjection:
		c.view = cmd.View
		c.proj = cmd.Projection

	case gpu.CmdSetDepthBias:
		c.bias = cmd.Bias
		factor, units, enabled := polygonOffset(cmd.Bias, c.opts.SlopeBiasScale)
		if enabled {
			gl.Enable(gl.POLYGON_OFFSET_FILL)
			gl.PolygonOffset(factor, units)
		} else {
			gl.Disable(gl.POLYGON_OFFSET_FILL)
		}
	}
	return nil
}

// polygonOffset maps a pipeline depth bias to glPolygonOffset arguments.
func polygonOffset(b gpu.DepthBias, slopeScale float32) (factor, units float32, enabled bool) {
	if b.IsZero() {
		return 0, 0, false
	}
	return b.SlopeScale * slopeScale, b.Constant, true
}

func (c *Context) bindCamera() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(c.camera.ViewportWidth), int32(c.camera.ViewportHeight))
	gl.CullFace(gl.BACK)
	c.target = gpu.CameraTarget
}

func (c *Context) cullResults(r gpu.CullingResults) (*cull.Results, error) {
	if c.results == nil {
		return nil, ErrNotCulled
	}
	res, ok := r.(*cull.Results)
	if !ok {
		return nil, gpu.ErrForeignResults
	}
	return res, nil
}

// DrawRenderers draws the renderers the batch selects with the program of
// their pass, or the override material.
func (c *Context) DrawRenderers(r gpu.CullingResults, drawing *gpu.DrawingSettings, filtering gpu.FilteringSettings) error {
	res, err := c.cullResults(r)
	if err != nil {
		return err
	}
	renderers := res.Select(drawing, filtering)
	if len(renderers) == 0 {
		return nil
	}

	globals := drawing.Globals
	if globals == nil {
		globals = &gpu.FrameGlobals{}
	}
	c.globals = globals

	transparent := drawing.Sorting.Criteria == gpu.SortCommonTransparent
	if transparent {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
		defer func() {
			gl.Disable(gl.BLEND)
			gl.DepthMask(true)
		}()
	}

	var current *program
	for _, rd := range renderers {
		p, color := c.programFor(rd, drawing.OverrideMaterial)
		if p != current {
			current = p
			p.use()
			gl.UniformMatrix4fv(p.uniform("uView"), 1, false, &c.view[0])
			gl.UniformMatrix4fv(p.uniform("uProjection"), 1, false, &c.proj[0])
			if p == c.lit {
				c.applyGlobals(p, globals)
			}
		}
		model := rd.Transform
		gl.UniformMatrix4fv(p.uniform("uModel"), 1, false, &model[0])
		rgba := color.Vec4()
		gl.Uniform4fv(p.uniform("uColor"), 1, &rgba[0])
		c.meshes.get(rd.Mesh).draw()
	}
	gl.BindVertexArray(0)
	return nil
}

func (c *Context) programFor(rd *scene.Renderer, override *gpu.Material) (*program, math.Color) {
	if override != nil {
		return c.errorProg, override.Color
	}
	if rd.PassTag == string(gpu.TagLit) {
		return c.lit, rd.Color.Linear()
	}
	return c.unlit, rd.Color.Linear()
}

// applyGlobals uploads the frame globals to a lit program.
func (c *Context) applyGlobals(p *program, g *gpu.FrameGlobals) {
	light := g.DirectionalLight
	gl.Uniform4fv(p.uniform(gpu.PropLightDirection), 1, &light.Direction[0])
	gl.Uniform4fv(p.uniform(gpu.PropLightColor), 1, &light.Color[0])
	gl.Uniform1i(p.uniform(gpu.PropDirectionalShadowMap), shadowMapUnit)

	sh := g.Shadows
	shadowMap, live := c.targets.get(shadowMapTarget)
	count := cascadeCount(sh, live)
	gl.Uniform1i(p.uniform(gpu.PropCascadeCount), count)
	if count == 0 {
		return
	}

	shadowMap.bindTexture(shadowMapUnit)
	gl.UniformMatrix4fv(p.uniform(arrayUniform(gpu.PropDirectionalShadowMatrices)), gpu.MaxCascades, false, &sh.Matrices[0][0])
	gl.Uniform4fv(p.uniform(arrayUniform(gpu.PropCascadeCullingSpheres)), gpu.MaxCascades, &sh.CullingSpheres[0][0])
	gl.Uniform1fv(p.uniform(arrayUniform(gpu.PropCascadeData)), gpu.MaxCascades, &sh.FadeCoefficients[0])
	gl.Uniform4fv(p.uniform(gpu.PropShadowDistanceFade), 1, &sh.DistanceFade[0])
	gl.Uniform1f(p.uniform(gpu.PropShadowStrength), sh.Strength)
}

// cascadeCount is the cascade count shaders see. Shadows are off unless
// the globals are valid and the shadow map is acquired this frame.
func cascadeCount(sh gpu.ShadowGlobals, mapLive bool) int32 {
	if !sh.Valid || !mapLive {
		return 0
	}
	return int32(min(max(sh.CascadeCount, 0), gpu.MaxCascades))
}

// DrawShadows draws the casters of one cascade into the bound depth target.
func (c *Context) DrawShadows(settings *gpu.ShadowDrawingSettings) error {
	res, err := c.cullResults(settings.Results)
	if err != nil {
		return err
	}
	if c.target == gpu.CameraTarget {
		return fmt.Errorf("%w: shadow draw into camera target", gpu.ErrInvalidTarget)
	}

	casters := res.CastersForSplit(settings.LightIndex, settings.SplitData)
	if len(casters) == 0 {
		return nil
	}

	c.caster.use()
	gl.UniformMatrix4fv(c.caster.uniform("uView"), 1, false, &c.view[0])
	gl.UniformMatrix4fv(c.caster.uniform("uProjection"), 1, false, &c.proj[0])
	for _, rd := range casters {
		model := rd.Transform
		gl.UniformMatrix4fv(c.caster.uniform("uModel"), 1, false, &model[0])
		c.meshes.get(rd.Mesh).draw()
	}
	gl.BindVertexArray(0)
	return nil
}

// DrawSkybox fills the background of a skybox camera with a vertical
// gradient.
func (c *Context) DrawSkybox(cam gpu.CameraProperties) error {
	if !cam.Skybox {
		return nil
	}
	horizon := cam.Background.Linear()
	zenith := horizon.Scale(0.5)
	h, z := horizon.Vec4(), zenith.Vec4()

	gl.DepthMask(false)
	c.sky.use()
	gl.Uniform4fv(c.sky.uniform("uHorizon"), 1, &h[0])
	gl.Uniform4fv(c.sky.uniform("uZenith"), 1, &z[0])
	gl.BindVertexArray(c.skyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.DepthMask(true)
	return nil
}

// ShouldRenderGizmos reports the Gizmos option.
func (c *Context) ShouldRenderGizmos() bool {
	return c.opts.Gizmos
}

// SetGizmos turns gizmo drawing on or off.
func (c *Context) SetGizmos(on bool) {
	c.opts.Gizmos = on
}

// DrawGizmos draws renderer and caster bounds before image effects and
// the cascade culling spheres after them.
func (c *Context) DrawGizmos(cam gpu.CameraProperties, subset gpu.GizmoSubset) error {
	if c.results == nil {
		return ErrNotCulled
	}
	viewProj := cam.Projection.Mul(cam.View)

	c.line.use()
	gl.UniformMatrix4fv(c.line.uniform("uViewProjection"), 1, false, &viewProj[0])
	draw := func(color math.Color, vertices []float32) {
		rgba := color.Vec4()
		gl.Uniform4fv(c.line.uniform("uColor"), 1, &rgba[0])
		c.lines.draw(vertices)
	}

	switch subset {
	case gpu.GizmosPreImageEffects:
		var boxes []float32
		for _, rd := range c.results.VisibleRenderers() {
			boxes = append(boxes, boxWireframe(rd.Bounds(), 0)...)
		}
		draw(colorBounds, boxes)
		if b, ok := c.results.ShadowCasterBounds(0); ok {
			draw(colorCasters, boxWireframe(b, 0.05))
		}

	case gpu.GizmosPostImageEffects:
		if c.globals == nil || !c.globals.Shadows.Valid {
			return nil
		}
		sh := c.globals.Shadows
		var spheres []float32
		for i := 0; i < sh.CascadeCount && i < gpu.MaxCascades; i++ {
			s := sh.CullingSpheres[i]
			spheres = append(spheres, sphereWireframe(s.XYZ(), sqrt32(s[3]))...)
		}
		draw(colorCascade, spheres)
	}
	return nil
}

// SetupCameraProperties binds the default framebuffer and the camera
// matrices.
func (c *Context) SetupCameraProperties(cam gpu.CameraProperties) error {
	if cam.ViewportWidth <= 0 || cam.ViewportHeight <= 0 {
		return fmt.Errorf("glrender: invalid viewport %dx%d", cam.ViewportWidth, cam.ViewportHeight)
	}
	c.camera = cam
	c.view = cam.View
	c.proj = cam.Projection
	c.bindCamera()
	return nil
}

// EmitWorldGeometryForSceneView has no editor geometry to add.
func (c *Context) EmitWorldGeometryForSceneView(cam gpu.CameraProperties) {
	c.log.Debug("scene view geometry requested", zap.String("camera", cam.Name))
}

// UsesReversedZ is false: GL 4.1 has no clip control.
func (c *Context) UsesReversedZ() bool {
	return false
}

// Submit ends the frame and reports any pending GL error.
func (c *Context) Submit() error {
	if len(c.samples) > 0 {
		open := slices.Clone(c.samples)
		c.samples = c.samples[:0]
		return fmt.Errorf("glrender: submit with open samples %v", open)
	}
	c.results = nil
	c.frames++
	gl.Flush()

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("glrender: GL error 0x%x in frame %d", code, c.frames)
	}
	return nil
}

// Frames returns the number of submitted frames.
func (c *Context) Frames() int {
	return c.frames
}
