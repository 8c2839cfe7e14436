package crf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// blob builds little-endian byte fixtures.
type blob struct {
	bytes.Buffer
}

func (b *blob) tag(s string) *blob {
	b.WriteString(s)
	return b
}

func (b *blob) u32(vs ...uint32) *blob {
	for _, v := range vs {
		binary.Write(&b.Buffer, binary.LittleEndian, v)
	}
	return b
}

func (b *blob) f32(vs ...float32) *blob {
	for _, v := range vs {
		binary.Write(&b.Buffer, binary.LittleEndian, v)
	}
	return b
}

func (b *blob) name(s string) *blob {
	b.u32(uint32(len(s)))
	b.WriteString(s)
	return b
}

func (b *blob) zeros(n int) *blob {
	b.Write(make([]byte, n))
	return b
}

// encodeWith runs fn against an in-memory writer and returns the bytes.
func encodeWith(t *testing.T, fn func(w *writer) error) []byte {
	t.Helper()
	m := &memFile{}
	w, err := newWriter(m)
	if err != nil {
		t.Fatalf("newWriter failed: %v", err)
	}
	if err := fn(w); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if w.err != nil {
		t.Fatalf("writer error: %v", w.err)
	}
	return m.Bytes()
}

// asFormatError fails the test unless err is a *FormatError wrapping want.
func asFormatError(t *testing.T, err error, want error) *FormatError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %v, got nil", want)
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %T: %v", err, err)
	}
	return fe
}

func testMaterial() Material {
	return Material{
		Diffuse:        "tex_d",
		Normal:         "tex_n",
		SpecularColors: [][3]float32{{0.2, 0.3, 0.4}},
	}
}

// triangleInput is one face over three vertices at the origin.
func triangleInput() MeshInput {
	return MeshInput{
		Positions: make([][3]float32, 3),
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Triangles: []Triangle{{Indices: [3]uint16{0, 1, 2}}},
		Material:  testMaterial(),
	}
}

// quadInput is two faces over four vertices with distinct attributes.
func quadInput() MeshInput {
	corner := func(u, v, a float32) Corner {
		return Corner{
			UV0:         [2]float32{u, v},
			UV1:         [2]float32{v, u},
			Specular:    [4]float32{0.5, 0.25, 1, a},
			BlendWeight: [4]float32{1, 0, 0, a},
		}
	}
	return MeshInput{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, -1}, {1, 0, 0}},
		Triangles: []Triangle{
			{Indices: [3]uint16{2, 0, 1}, Corners: [3]Corner{corner(1, 1, 0.5), corner(0, 0, 0.1), corner(1, 0, 0.9)}},
			{Indices: [3]uint16{1, 3, 0}, Corners: [3]Corner{corner(1, 0, 0.2), corner(0, 1, 0.3), corner(0, 0, 0.4)}},
		},
		BBox:     BBox{Min: [3]float32{0, 0, 0}, Max: [3]float32{1, 1, 0}},
		Material: Material{Diffuse: "quad_d", Normal: "quad_n", Specular: "quad_s", SpecularColors: [][3]float32{{1, 1, 1}}},
	}
}

func mustBuild(t *testing.T, in ExportInput) *File {
	t.Helper()
	f, err := Build(in, DefaultQuantization())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return f
}
