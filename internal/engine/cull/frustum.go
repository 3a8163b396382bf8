package cull

import "github.com/Faultbox/custom-rp/pkg/math"

// Plane is a half-space: Normal·p + D = 0. Normal points into the frustum.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo returns the signed distance from a point to the plane.
// Positive means inside.
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromMatrix extracts normalized frustum planes from a
// view-projection matrix with OpenGL depth range (Gribb/Hartmann).
func FrustumFromMatrix(vp math.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)

	var f Frustum
	f.Planes[0] = planeFrom(r3, r0, 1)
	f.Planes[1] = planeFrom(r3, r0, -1)
	f.Planes[2] = planeFrom(r3, r1, 1)
	f.Planes[3] = planeFrom(r3, r1, -1)
	f.Planes[4] = planeFrom(r3, r2, 1)
	f.Planes[5] = planeFrom(r3, r2, -1)
	return f
}

func planeFrom(w, axis math.Vec4, sign float32) Plane {
	a := w[0] + sign*axis[0]
	b := w[1] + sign*axis[1]
	c := w[2] + sign*axis[2]
	d := w[3] + sign*axis[3]

	n := math.Vec3{X: a, Y: b, Z: c}
	l := n.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Scale(1 / l), D: d / l}
}

// IntersectsAABB returns false if the box is completely outside the frustum.
// Empty boxes never intersect.
func (f *Frustum) IntersectsAABB(box math.AABB) bool {
	if box.IsEmpty() {
		return false
	}
	for i := range f.Planes {
		p := f.Planes[i]
		// positive vertex
		v := box.Max
		if p.Normal.X < 0 {
			v.X = box.Min.X
		}
		if p.Normal.Y < 0 {
			v.Y = box.Min.Y
		}
		if p.Normal.Z < 0 {
			v.Z = box.Min.Z
		}
		if p.DistanceTo(v) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere returns false if the sphere is completely outside.
func (f *Frustum) IntersectsSphere(s math.Sphere) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceTo(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}
