package bake

import (
	"github.com/Faultbox/texbake/internal/mesh"
	"github.com/Faultbox/texbake/pkg/math"
)

// Normal results are stored encoded as 0.5*v + 0.5 per component.

func decodeNormal(buf []float32) math.Vec3 {
	return math.Vec3{X: buf[0]*2 - 1, Y: buf[1]*2 - 1, Z: buf[2]*2 - 1}
}

func encodeNormal(buf []float32, n math.Vec3) {
	buf[0] = n.X*0.5 + 0.5
	buf[1] = n.Y*0.5 + 0.5
	buf[2] = n.Z*0.5 + 0.5
}

func swizzle(n math.Vec3, axes [3]Axis) math.Vec3 {
	var out [3]float32
	for c, a := range axes {
		idx, sign, _ := a.split()
		out[c] = sign * n.Axis(idx)
	}
	return math.Vec3{X: out[0], Y: out[1], Z: out[2]}
}

// NormalConverter rewrites world-space normal results into the requested
// space. Invalid texels are skipped.
type NormalConverter struct {
	Space   NormalSpace
	Swizzle [3]Axis

	// Matrix is the world matrix of the baked object.
	Matrix math.Mat4

	// Tangent mode: the low poly mesh with tangents, addressed by
	// TangentPixels rather than the result locators.
	TangentMesh   *mesh.Mesh
	TangentPixels []TexelLocator
}

// Convert transforms buf in place. pixels decides which texels hold data.
func (c *NormalConverter) Convert(buf []float32, depth int, pixels []TexelLocator) {
	if c.Space == SpaceWorld && c.Swizzle == IdentitySwizzle {
		return
	}

	// World normals are carried by the inverse transpose, so the transpose
	// takes them back to object space.
	toObject := c.Matrix.Mat3().Transpose()
	if c.Space == SpaceTangent && c.TangentMesh != nil && c.TangentMesh.Tangents == nil {
		mesh.ComputeTangents(c.TangentMesh)
	}

	for i, loc := range pixels {
		if !loc.Valid() {
			continue
		}
		px := buf[i*depth : i*depth+3]
		n := decodeNormal(px)

		switch c.Space {
		case SpaceObject:
			n = toObject.MulVec3(n).Normalize()
		case SpaceTangent:
			tl := c.TangentPixels[i]
			if !tl.Valid() || c.TangentMesh == nil {
				continue
			}
			n = toObject.MulVec3(n)
			t, b, nn := c.TangentMesh.TangentFrame(int(tl.PrimitiveID), tl.Weights())
			tbn, ok := math.Mat3FromColumns(t, b, nn).Inverse()
			if !ok {
				continue
			}
			n = tbn.MulVec3(n).Normalize()
		}

		encodeNormal(px, swizzle(n, c.Swizzle))
	}
}
