package glrender

import (
	gomath "math"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/custom-rp/pkg/math"
)

// boxVertexCount is the number of vertices of a box wireframe (12 edges × 2).
const boxVertexCount = 24

// circleSegments is the line count of each great circle of a sphere gizmo.
const circleSegments = 32

var (
	colorBounds  = math.Color{R: 0.2, G: 0.9, B: 0.3, A: 1}
	colorCasters = math.Color{R: 1, G: 0.8, B: 0.1, A: 1}
	colorCascade = math.Color{R: 0.3, G: 0.6, B: 1, A: 1}
)

// boxWireframe returns line vertices for the edges of b, padded on all
// sides. Format: [x, y, z] per vertex.
func boxWireframe(b math.AABB, padding float32) []float32 {
	minX, minY, minZ := b.Min.X-padding, b.Min.Y-padding, b.Min.Z-padding
	maxX, maxY, maxZ := b.Max.X+padding, b.Max.Y+padding, b.Max.Z+padding
	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// sphereWireframe returns three axis-aligned circles of the sphere as
// line vertices.
func sphereWireframe(center math.Vec3, radius float32) []float32 {
	out := make([]float32, 0, 3*circleSegments*2*3)
	point := func(axis int, a float64) math.Vec3 {
		s := radius * float32(gomath.Sin(a))
		c := radius * float32(gomath.Cos(a))
		switch axis {
		case 0:
			return center.Add(math.Vec3{Y: s, Z: c})
		case 1:
			return center.Add(math.Vec3{X: c, Z: s})
		default:
			return center.Add(math.Vec3{X: c, Y: s})
		}
	}
	step := 2 * gomath.Pi / circleSegments
	for axis := 0; axis < 3; axis++ {
		for i := 0; i < circleSegments; i++ {
			p0 := point(axis, float64(i)*step)
			p1 := point(axis, float64(i+1)*step)
			out = append(out, p0.X, p0.Y, p0.Z, p1.X, p1.Y, p1.Z)
		}
	}
	return out
}

// lineBatch streams line vertices through one dynamic buffer.
type lineBatch struct {
	vao uint32
	vbo uint32
}

func newLineBatch() *lineBatch {
	b := &lineBatch{}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.VertexAttribPointerWithOffset(attribPosition, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(attribPosition)
	gl.BindVertexArray(0)
	return b
}

func (b *lineBatch) draw(vertices []float32) {
	if len(vertices) == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STREAM_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/3))
	gl.BindVertexArray(0)
}

func (b *lineBatch) close() {
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
}

func sqrt32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(gomath.Sqrt(float64(v)))
}
