package formats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const quadOBJ = `# two material quad
o Panel
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl Wood
s off
f 1/1/1 2/2/1 3/3/1
usemtl Metal
s 1
f 1/1/1 3/3/1 4/4/1
usemtl Wood
f -4/-4/-1 -2/-2/-1 -1/-1/-1
`

func TestParseOBJ_ValidFile(t *testing.T) {
	obj, err := ParseOBJ([]byte(quadOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if obj.Name != "Panel" {
		t.Errorf("expected name Panel, got %q", obj.Name)
	}
	if len(obj.Vertices) != 4 {
		t.Errorf("expected 4 vertices, got %d", len(obj.Vertices))
	}
	if len(obj.TexCoords) != 4 {
		t.Errorf("expected 4 texcoords, got %d", len(obj.TexCoords))
	}
	if len(obj.Faces) != 3 {
		t.Fatalf("expected 3 faces, got %d", len(obj.Faces))
	}

	// Materials are listed once, in order of first use
	if len(obj.Materials) != 2 || obj.Materials[0] != "Wood" || obj.Materials[1] != "Metal" {
		t.Errorf("expected materials [Wood Metal], got %v", obj.Materials)
	}
	if obj.Faces[1].Material != 1 || obj.Faces[2].Material != 0 {
		t.Errorf("unexpected face materials: %d, %d", obj.Faces[1].Material, obj.Faces[2].Material)
	}

	if obj.Faces[0].Smooth {
		t.Error("expected first face flat shaded")
	}
	if !obj.Faces[1].Smooth {
		t.Error("expected second face smooth shaded")
	}

	// Negative indices are relative to the end of each list
	c := obj.Faces[2].Corners[0]
	if c.Vertex != 0 || c.TexCoord != 0 || c.Normal != 0 {
		t.Errorf("expected relative corner 0/0/0, got %d/%d/%d", c.Vertex, c.TexCoord, c.Normal)
	}
}

func TestParseOBJ_MissingAttributes(t *testing.T) {
	data := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n"
	obj, err := ParseOBJ([]byte(data))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if got := obj.TriangleCount(); got != 2 {
		t.Errorf("expected 2 triangles, got %d", got)
	}
	c := obj.Faces[0].Corners[3]
	if c.TexCoord != -1 || c.Normal != -1 {
		t.Errorf("expected missing texcoord/normal to be -1, got %d/%d", c.TexCoord, c.Normal)
	}
	if len(obj.Materials) != 1 || obj.Materials[0] != "" {
		t.Errorf("expected a single unnamed material slot, got %v", obj.Materials)
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"empty", "# nothing\n", ErrEmptyOBJ},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrInvalidOBJFace},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n", ErrOBJIndexRange},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrOBJIndexRange},
		{"bad number", "v 0 x 0\n", ErrInvalidOBJNumber},
		{"short vertex", "v 0 0\n", ErrInvalidOBJNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := os.WriteFile(path, []byte(quadOBJ), 0644); err != nil {
		t.Fatalf("failed to write test OBJ: %v", err)
	}

	obj, err := ParseOBJFile(path)
	if err != nil {
		t.Fatalf("ParseOBJFile failed: %v", err)
	}
	if obj.TriangleCount() != 3 {
		t.Errorf("expected 3 triangles, got %d", obj.TriangleCount())
	}

	if _, err := ParseOBJFile(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("expected error for missing file")
	}
}
