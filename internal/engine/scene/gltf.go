package scene

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/custom-rp/pkg/math"
)

// LoadGLTF reads a .gltf or .glb file and returns one renderer per triangle
// primitive, placed by the node hierarchy of the default scene.
// Materials with alpha mode BLEND go to the transparent queue.
func LoadGLTF(path string, passTag string) ([]*Renderer, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	meshes := make([][]*primitive, len(doc.Meshes))
	for i, gm := range doc.Meshes {
		for j, p := range gm.Primitives {
			if p.Mode != gltf.PrimitiveTriangles {
				continue
			}
			prim, err := readPrimitive(doc, p, fmt.Sprintf("%s/%d", gm.Name, j))
			if err != nil {
				return nil, fmt.Errorf("gltf %q mesh %d: %w", path, i, err)
			}
			meshes[i] = append(meshes[i], prim)
		}
	}

	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	}

	var out []*Renderer
	var walk func(idx int, parent math.Mat4)
	walk = func(idx int, parent math.Mat4) {
		node := doc.Nodes[idx]
		world := parent.Mul(nodeMatrix(node))
		if node.Mesh != nil {
			for _, prim := range meshes[*node.Mesh] {
				r := NewRenderer(nodeName(node, idx), prim.mesh, world, passTag)
				r.Color = prim.color
				if prim.blend {
					r.Queue = QueueTransparent
					r.CastShadows = false
				}
				out = append(out, r)
			}
		}
		for _, child := range node.Children {
			walk(child, world)
		}
	}
	for _, root := range roots {
		walk(root, math.Identity())
	}
	return out, nil
}

type primitive struct {
	mesh  *Mesh
	color math.Color
	blend bool
}

func readPrimitive(doc *gltf.Document, p *gltf.Primitive, name string) (*primitive, error) {
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("primitive %s has no POSITION", name)
	}
	rawPos, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}
	positions := make([]math.Vec3, len(rawPos))
	for i, v := range rawPos {
		positions[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}

	var normals []math.Vec3
	if nrmIdx, ok := p.Attributes[gltf.NORMAL]; ok {
		rawNrm, err := modeler.ReadNormal(doc, doc.Accessors[nrmIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		normals = make([]math.Vec3, len(rawNrm))
		for i, v := range rawNrm {
			normals[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
		}
	} else {
		normals = make([]math.Vec3, len(positions))
		for i := range normals {
			normals[i] = math.Vec3{Y: 1}
		}
	}

	var indices []uint32
	if p.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	prim := &primitive{
		mesh:  NewMesh(name, positions, normals, indices),
		color: math.White,
	}
	if p.Material != nil && *p.Material < len(doc.Materials) {
		mat := doc.Materials[*p.Material]
		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			prim.color = math.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}
		}
		prim.blend = mat.AlphaMode == gltf.AlphaBlend
	}
	return prim, nil
}

func nodeMatrix(n *gltf.Node) math.Mat4 {
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		var out math.Mat4
		for i, v := range m {
			out[i] = float32(v)
		}
		return out
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	rot := math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}
	return math.Translate(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul(rot.ToMat4()).
		Mul(math.Scale(float32(s[0]), float32(s[1]), float32(s[2])))
}

func nodeName(n *gltf.Node, idx int) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("node%d", idx)
}
