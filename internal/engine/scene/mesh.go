package scene

import "github.com/Faultbox/custom-rp/pkg/math"

// Mesh is indexed triangle geometry in object space.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3
	Indices   []uint32
	Bounds    math.AABB
}

// NewMesh creates a mesh and computes its bounds.
func NewMesh(name string, positions, normals []math.Vec3, indices []uint32) *Mesh {
	m := &Mesh{
		Name:      name,
		Positions: positions,
		Normals:   normals,
		Indices:   indices,
		Bounds:    math.EmptyAABB(),
	}
	for _, p := range positions {
		m.Bounds = m.Bounds.EncapsulatePoint(p)
	}
	return m
}

// Cube returns a cube of the given edge length centered at the origin.
func Cube(size float32) *Mesh {
	h := size / 2
	faces := []struct {
		normal math.Vec3
		uAxis  math.Vec3
		vAxis  math.Vec3
	}{
		{math.Vec3{X: 1}, math.Vec3{Z: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Y: 1}, math.Vec3{X: 1}, math.Vec3{Z: -1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
		{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: -1}, math.Vec3{X: -1}, math.Vec3{Y: 1}},
	}

	positions := make([]math.Vec3, 0, 24)
	normals := make([]math.Vec3, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(positions))
		center := f.normal.Scale(h)
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := center.Add(f.uAxis.Scale(c[0] * h)).Add(f.vAxis.Scale(c[1] * h))
			positions = append(positions, p)
			normals = append(normals, f.normal)
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh("Cube", positions, normals, indices)
}

// Plane returns a square on the XZ plane facing +Y.
func Plane(size float32) *Mesh {
	h := size / 2
	up := math.Vec3{Y: 1}
	positions := []math.Vec3{
		{X: -h, Z: h},
		{X: h, Z: h},
		{X: h, Z: -h},
		{X: -h, Z: -h},
	}
	normals := []math.Vec3{up, up, up, up}
	return NewMesh("Plane", positions, normals, []uint32{0, 1, 2, 0, 2, 3})
}
