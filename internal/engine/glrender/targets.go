package glrender

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/custom-rp/internal/engine/gpu"
)

// depthTarget is a depth-only framebuffer. Shadowmap targets sample with
// hardware depth comparison.
type depthTarget struct {
	desc    gpu.RenderTextureDescriptor
	fbo     uint32
	texture uint32
}

func newDepthTarget(desc gpu.RenderTextureDescriptor) (*depthTarget, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", desc.Width, desc.Height)
	}
	if desc.Format == gpu.FormatColor {
		return nil, fmt.Errorf("color targets are not supported")
	}

	t := &depthTarget{desc: desc}

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	gl.GenTextures(1, &t.texture)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		depthInternalFormat(desc.DepthBits),
		int32(desc.Width),
		int32(desc.Height),
		0,
		gl.DEPTH_COMPONENT,
		gl.FLOAT,
		nil,
	)

	filter := int32(gl.NEAREST)
	if desc.Filter == gpu.FilterBilinear {
		filter = gl.LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)

	// Outside the map counts as lit.
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	borderColor := []float32{1.0, 1.0, 1.0, 1.0}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &borderColor[0])

	if desc.Format == gpu.FormatShadowmap {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)
	}

	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.texture, 0)

	// No color buffer
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.destroy()
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	return t, nil
}

// bind makes t the draw target with a viewport covering it.
func (t *depthTarget) bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.desc.Width), int32(t.desc.Height))
}

func (t *depthTarget) bindTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
}

func (t *depthTarget) destroy() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.texture != 0 {
		gl.DeleteTextures(1, &t.texture)
		t.texture = 0
	}
}

func depthInternalFormat(bits int) int32 {
	switch {
	case bits <= 16:
		return gl.DEPTH_COMPONENT16
	case bits <= 24:
		return gl.DEPTH_COMPONENT24
	default:
		return gl.DEPTH_COMPONENT32F
	}
}

// targetPool keeps released targets for reuse by a later acquire with the
// same descriptor, so a per-frame shadow map does not reallocate.
type targetPool struct {
	live map[gpu.RenderTargetID]*depthTarget
	free []*depthTarget

	create  func(gpu.RenderTextureDescriptor) (*depthTarget, error)
	destroy func(*depthTarget)
}

func newTargetPool() *targetPool {
	return &targetPool{
		live:    make(map[gpu.RenderTargetID]*depthTarget),
		create:  newDepthTarget,
		destroy: (*depthTarget).destroy,
	}
}

func (p *targetPool) acquire(id gpu.RenderTargetID, desc gpu.RenderTextureDescriptor) (*depthTarget, error) {
	if id == gpu.CameraTarget {
		return nil, fmt.Errorf("%w: temporary target needs an id", gpu.ErrInvalidTarget)
	}
	if _, ok := p.live[id]; ok {
		return nil, fmt.Errorf("%s already acquired", id)
	}
	for i, t := range p.free {
		if t.desc == desc {
			p.free = append(p.free[:i], p.free[i+1:]...)
			p.live[id] = t
			return t, nil
		}
	}
	t, err := p.create(desc)
	if err != nil {
		return nil, err
	}
	p.live[id] = t
	return t, nil
}

// release returns the target to the free list. Unknown ids are ignored.
func (p *targetPool) release(id gpu.RenderTargetID) bool {
	t, ok := p.live[id]
	if !ok {
		return false
	}
	delete(p.live, id)
	p.free = append(p.free, t)
	return true
}

func (p *targetPool) get(id gpu.RenderTargetID) (*depthTarget, bool) {
	t, ok := p.live[id]
	return t, ok
}

// trim destroys every free target.
func (p *targetPool) trim() {
	for _, t := range p.free {
		p.destroy(t)
	}
	p.free = p.free[:0]
}

func (p *targetPool) close() {
	for id, t := range p.live {
		p.destroy(t)
		delete(p.live, id)
	}
	p.trim()
}
