package cull

import (
	gomath "math"

	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// cascadeSphere returns the smallest sphere centered on the camera axis
// that encloses the camera frustum between the near plane and far.
func (r *Results) cascadeSphere(far float32) math.Sphere {
	p := r.params
	n := p.Near
	if far < n {
		far = n
	}

	tanHalf := float32(gomath.Tan(float64(p.FieldOfView) / 2))
	k2 := tanHalf * tanHalf * (1 + p.Aspect*p.Aspect)

	c := (far + n) * (1 + k2) / 2
	var radius float32
	if c >= far {
		c = far
		radius = far * sqrt32(k2)
	} else {
		d := c - n
		radius = sqrt32(d*d + n*n*k2)
	}

	return math.Sphere{
		Center: p.CameraPosition.Add(p.CameraForward.Normalize().Scale(c)),
		Radius: radius,
	}
}

// splitDistance returns the far distance of a cascade. Cascade i reaches
// ratios[i] of the shadow distance; the last always reaches all of it.
func (r *Results) splitDistance(cascadeIndex, cascadeCount int, ratios math.Vec3) float32 {
	if cascadeIndex >= cascadeCount-1 || cascadeIndex >= 3 {
		return r.params.ShadowDistance
	}
	ratio := [3]float32{ratios.X, ratios.Y, ratios.Z}[cascadeIndex]
	return ratio * r.params.ShadowDistance
}

// ComputeDirectionalShadowMatricesAndCullingPrimitives fits an orthographic
// light frustum around the culling sphere of one cascade.
//
// The sphere center is snapped to shadow-map texels along the light's right
// and up axes so the cascade does not shimmer as the camera moves. The light
// is pulled back far enough to include every caster between the sphere and
// the light. ok is false when the light cannot cast shadows or no caster
// reaches the cascade; the returned matrices and split data are valid anyway.
func (r *Results) ComputeDirectionalShadowMatricesAndCullingPrimitives(
	lightIndex, cascadeIndex, cascadeCount int,
	ratios math.Vec3, mapSize int, nearPlaneOffset float32,
) (view, proj math.Mat4, split gpu.ShadowSplitData, ok bool) {
	sphere := r.cascadeSphere(r.splitDistance(cascadeIndex, cascadeCount, ratios))
	split.CullingSphere = sphere.Center.Vec4(sphere.Radius)

	dir := math.Vec3{X: 0, Y: -1, Z: 0}
	l, lightOK := r.shadowLight(lightIndex)
	if lightOK {
		dir = l.Forward()
	}

	// Avoid an up vector parallel with the light direction.
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	if abs32(dir.Y) > 0.99 {
		up = math.Vec3{X: 0, Y: 0, Z: 1}
	}
	right := dir.Cross(up).Normalize()
	lightUp := right.Cross(dir)

	if mapSize < 1 {
		mapSize = 1
	}
	texel := 2 * sphere.Radius / float32(mapSize)
	center := sphere.Center
	if texel > 0 {
		cx := center.Dot(right)
		cy := center.Dot(lightUp)
		sx := floor32(cx/texel) * texel
		sy := floor32(cy/texel) * texel
		center = center.Add(right.Scale(sx - cx)).Add(lightUp.Scale(sy - cy))
	}
	half := sphere.Radius + texel

	back := sphere.Radius
	if lightOK {
		toLight := dir.Neg()
		for _, c := range r.casters {
			b := c.Bounds()
			if !castsInto(b, sphere, dir) {
				continue
			}
			ok = true
			if reach := b.Center().Sub(center).Dot(toLight) + b.Radius(); reach > back {
				back = reach
			}
		}
	}
	back += nearPlaneOffset

	eye := center.Sub(dir.Scale(back))
	view = math.LookAt(eye, center, up)
	proj = math.Ortho(-half, half, -half, half, 0, back+sphere.Radius)
	if r.opts.ReversedZ {
		proj = proj.NegateRow(2)
	}
	return view, proj, split, ok
}

func sqrt32(v float32) float32 {
	return float32(gomath.Sqrt(float64(v)))
}

func floor32(v float32) float32 {
	return float32(gomath.Floor(float64(v)))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
