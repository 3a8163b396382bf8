package glrender

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/custom-rp/internal/engine/scene"
)

// floatsPerVertex is position followed by normal.
const floatsPerVertex = 6

type gpuMesh struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

// meshCache uploads scene meshes on first use.
type meshCache struct {
	meshes map[*scene.Mesh]*gpuMesh
}

func newMeshCache() *meshCache {
	return &meshCache{meshes: make(map[*scene.Mesh]*gpuMesh)}
}

func (c *meshCache) get(m *scene.Mesh) *gpuMesh {
	if gm, ok := c.meshes[m]; ok {
		return gm
	}
	gm := uploadMesh(m)
	c.meshes[m] = gm
	return gm
}

func (c *meshCache) close() {
	for m, gm := range c.meshes {
		gl.DeleteVertexArrays(1, &gm.vao)
		gl.DeleteBuffers(1, &gm.vbo)
		gl.DeleteBuffers(1, &gm.ebo)
		delete(c.meshes, m)
	}
}

func uploadMesh(m *scene.Mesh) *gpuMesh {
	vertices := interleave(m)
	gm := &gpuMesh{indexCount: int32(len(m.Indices))}
	if len(vertices) == 0 || len(m.Indices) == 0 {
		return gm
	}

	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	gl.GenBuffers(1, &gm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(attribPosition, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(attribPosition)
	gl.VertexAttribPointerWithOffset(attribNormal, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(attribNormal)

	gl.GenBuffers(1, &gm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return gm
}

func (gm *gpuMesh) draw() {
	if gm.vao == 0 {
		return
	}
	gl.BindVertexArray(gm.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, gm.indexCount, gl.UNSIGNED_INT, 0)
}

// interleave packs positions and normals into one vertex stream. Missing
// normals are written as +Y.
func interleave(m *scene.Mesh) []float32 {
	out := make([]float32, 0, len(m.Positions)*floatsPerVertex)
	for i, p := range m.Positions {
		n := [3]float32{0, 1, 0}
		if i < len(m.Normals) {
			n = [3]float32{m.Normals[i].X, m.Normals[i].Y, m.Normals[i].Z}
		}
		out = append(out, p.X, p.Y, p.Z, n[0], n[1], n[2])
	}
	return out
}
