package cull

import (
	"slices"

	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// Results is the output of Cull. It implements gpu.CullingResults.
type Results struct {
	params gpu.CullingParameters
	opts   Options

	renderers []*scene.Renderer
	lights    []gpu.VisibleLight
	casters   []*scene.Renderer
}

var _ gpu.CullingResults = (*Results)(nil)

// VisibleRenderers returns renderers intersecting the camera frustum.
func (r *Results) VisibleRenderers() []*scene.Renderer {
	return r.renderers
}

// VisibleLights returns lights affecting the camera. The world's sun,
// if any, is first.
func (r *Results) VisibleLights() []gpu.VisibleLight {
	return r.lights
}

// Parameters returns the parameters the results were culled with.
func (r *Results) Parameters() gpu.CullingParameters {
	return r.params
}

// Select returns the visible renderers a draw batch covers, in draw order.
func (r *Results) Select(drawing *gpu.DrawingSettings, filtering gpu.FilteringSettings) []*scene.Renderer {
	var out []*scene.Renderer
	for _, rd := range r.renderers {
		if !filtering.QueueRange.Contains(rd.Queue) || !drawing.Matches(rd.PassTag) {
			continue
		}
		out = append(out, rd)
	}

	eye := drawing.Sorting.CameraPosition
	dist := func(rd *scene.Renderer) float32 {
		return rd.Bounds().Center().Sub(eye).LengthSq()
	}

	switch drawing.Sorting.Criteria {
	case gpu.SortCommonOpaque:
		slices.SortStableFunc(out, func(a, b *scene.Renderer) int {
			if a.Queue != b.Queue {
				return a.Queue - b.Queue
			}
			return compare(dist(a), dist(b))
		})
	case gpu.SortCommonTransparent:
		slices.SortStableFunc(out, func(a, b *scene.Renderer) int {
			if a.Queue != b.Queue {
				return a.Queue - b.Queue
			}
			return compare(dist(b), dist(a))
		})
	}
	return out
}

func compare(a, b float32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// shadowLight returns the light at index if it can cast directional shadows.
func (r *Results) shadowLight(lightIndex int) (*scene.Light, bool) {
	if lightIndex < 0 || lightIndex >= len(r.lights) {
		return nil, false
	}
	l := r.lights[lightIndex].Light
	if l == nil || l.Type != scene.LightDirectional || !l.CastShadows || l.ShadowStrength <= 0 {
		return nil, false
	}
	return l, true
}

// ShadowCasterBounds returns the bounds of the casters whose shadows can
// reach the shadow range of the camera.
func (r *Results) ShadowCasterBounds(lightIndex int) (math.AABB, bool) {
	bounds := math.EmptyAABB()

	l, ok := r.shadowLight(lightIndex)
	if !ok || r.params.ShadowDistance <= 0 {
		return bounds, false
	}

	sphere := r.cascadeSphere(r.params.ShadowDistance)
	dir := l.Forward()
	for _, c := range r.casters {
		b := c.Bounds()
		if castsInto(b, sphere, dir) {
			bounds = bounds.Encapsulate(b)
		}
	}
	return bounds, !bounds.IsEmpty()
}

// CastersForSplit returns the shadow casters of a light that can reach the
// culling sphere of a cascade.
func (r *Results) CastersForSplit(lightIndex int, split gpu.ShadowSplitData) []*scene.Renderer {
	l, ok := r.shadowLight(lightIndex)
	if !ok {
		return nil
	}
	sphere := math.Sphere{Center: split.CullingSphere.XYZ(), Radius: split.CullingSphere[3]}
	dir := l.Forward()

	var out []*scene.Renderer
	for _, c := range r.casters {
		if castsInto(c.Bounds(), sphere, dir) {
			out = append(out, c)
		}
	}
	return out
}

// castsInto reports whether a caster can shadow anything inside sphere for
// light traveling along dir. The caster's bounding sphere is tested against
// the half-infinite capsule swept from the sphere towards the light.
func castsInto(b math.AABB, sphere math.Sphere, dir math.Vec3) bool {
	if b.IsEmpty() {
		return false
	}
	v := b.Center().Sub(sphere.Center)
	toLight := dir.Neg()
	t := v.Dot(toLight)

	var d2 float32
	if t < 0 {
		d2 = v.LengthSq()
	} else {
		d2 = v.LengthSq() - t*t
		if d2 < 0 {
			d2 = 0
		}
	}
	reach := sphere.Radius + b.Radius()
	return d2 <= reach*reach
}
