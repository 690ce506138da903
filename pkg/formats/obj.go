// Package formats parses mesh interchange files used as bake inputs. Only
// the geometry subset of Wavefront OBJ is supported: polygons with UVs,
// normals, material slots and smoothing groups.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrInvalidOBJFace   = errors.New("invalid OBJ face: fewer than 3 corners")
	ErrOBJIndexRange    = errors.New("OBJ index out of range")
	ErrInvalidOBJNumber = errors.New("invalid OBJ number")
	ErrEmptyOBJ         = errors.New("OBJ contains no faces")
)

// OBJCorner references the attributes of one face corner.
// Missing attributes are -1.
type OBJCorner struct {
	Vertex   int
	TexCoord int
	Normal   int
}

// OBJFace is a polygon with its material slot and smoothing flag.
type OBJFace struct {
	Corners  []OBJCorner
	Material int  // Index into OBJ.Materials
	Smooth   bool // Smoothing group other than "off"
}

// OBJ is a parsed Wavefront OBJ file.
// The first group name ("o" or "g") becomes Name.
type OBJ struct {
	Name      string
	Vertices  [][3]float32
	TexCoords [][2]float32
	Normals   [][3]float32
	Materials []string // usemtl names in order of first use
	Faces     []OBJFace
}

// ParseOBJ parses OBJ text data.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	materialIndex := make(map[string]int)
	currentMaterial := 0
	smooth := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.Vertices = append(obj.Vertices, [3]float32{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.TexCoords = append(obj.TexCoords, [2]float32{v[0], v[1]})
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.Normals = append(obj.Normals, [3]float32{v[0], v[1], v[2]})
		case "f":
			face, err := obj.parseFace(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if len(obj.Materials) == 0 {
				// Faces before any usemtl go to an unnamed slot
				obj.Materials = append(obj.Materials, "")
				materialIndex[""] = 0
			}
			face.Material = currentMaterial
			face.Smooth = smooth
			obj.Faces = append(obj.Faces, face)
		case "usemtl":
			name := ""
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
			idx, ok := materialIndex[name]
			if !ok {
				idx = len(obj.Materials)
				materialIndex[name] = idx
				obj.Materials = append(obj.Materials, name)
			}
			currentMaterial = idx
		case "s":
			smooth = len(fields) > 1 && fields[1] != "off" && fields[1] != "0"
		case "o", "g":
			if obj.Name == "" && len(fields) > 1 {
				obj.Name = fields[1]
			}
		default:
			// mtllib, l, p and vendor extensions carry nothing we bake from
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(obj.Faces) == 0 {
		return nil, ErrEmptyOBJ
	}
	return obj, nil
}

// ParseOBJFile reads and parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// TriangleCount returns the number of triangles after fan triangulation.
func (o *OBJ) TriangleCount() int {
	n := 0
	for _, f := range o.Faces {
		n += len(f.Corners) - 2
	}
	return n
}

func (o *OBJ) parseFace(fields []string) (OBJFace, error) {
	if len(fields) < 3 {
		return OBJFace{}, ErrInvalidOBJFace
	}
	face := OBJFace{Corners: make([]OBJCorner, 0, len(fields))}
	for _, f := range fields {
		parts := strings.Split(f, "/")
		c := OBJCorner{Vertex: -1, TexCoord: -1, Normal: -1}

		var err error
		if c.Vertex, err = resolveIndex(parts[0], len(o.Vertices)); err != nil {
			return OBJFace{}, err
		}
		if len(parts) > 1 && parts[1] != "" {
			if c.TexCoord, err = resolveIndex(parts[1], len(o.TexCoords)); err != nil {
				return OBJFace{}, err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if c.Normal, err = resolveIndex(parts[2], len(o.Normals)); err != nil {
				return OBJFace{}, err
			}
		}
		face.Corners = append(face.Corners, c)
	}
	return face, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index to 0-based.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return -1, fmt.Errorf("%w: %q", ErrInvalidOBJNumber, s)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return -1, fmt.Errorf("%w: index 0", ErrOBJIndexRange)
	}
	if i < 0 || i >= count {
		return -1, fmt.Errorf("%w: %s of %d", ErrOBJIndexRange, s, count)
	}
	return i, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInvalidOBJNumber, n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOBJNumber, fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}
