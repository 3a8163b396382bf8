// Package cull implements CPU visibility culling of a scene.World and the
// directional shadow cascade fitting used by the shadow pass.
package cull

import (
	"go.uber.org/zap"

	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/internal/logger"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// Options control culling output that depends on the device.
type Options struct {
	// ReversedZ makes shadow projections map near to +1 and far to -1.
	ReversedZ bool
}

// Cull computes the visible set of world for the camera described by params.
// params.Projection must use the OpenGL depth convention.
func Cull(world *scene.World, params gpu.CullingParameters, opts Options) *Results {
	res := &Results{
		params: params,
		opts:   opts,
	}
	if world == nil {
		return res
	}

	frustum := FrustumFromMatrix(params.Projection.Mul(params.View))

	for _, r := range world.Renderers {
		if r.Mesh == nil {
			continue
		}
		if r.CastShadows {
			res.casters = append(res.casters, r)
		}
		if frustum.IntersectsAABB(r.Bounds()) {
			res.renderers = append(res.renderers, r)
		}
	}

	// The designated sun always occupies index 0.
	if world.Sun != nil {
		res.lights = append(res.lights, gpu.VisibleLight{Light: world.Sun})
	}
	for _, l := range world.Lights {
		if l == world.Sun {
			continue
		}
		if l.Type != scene.LightDirectional &&
			!frustum.IntersectsSphere(math.Sphere{Center: l.Position, Radius: l.Range}) {
			continue
		}
		res.lights = append(res.lights, gpu.VisibleLight{Light: l})
	}

	logger.Debug("culled",
		zap.Int("renderers", len(res.renderers)),
		zap.Int("of", len(world.Renderers)),
		zap.Int("lights", len(res.lights)),
		zap.Int("casters", len(res.casters)))
	return res
}
