package crf

import "fmt"

// Corner carries the per-triangle-corner samples of a face.
type Corner struct {
	UV0         [2]float32
	UV1         [2]float32
	Specular    [4]float32 // R, G, B, A
	BlendWeight [4]float32 // X, Y, Z, W
}

// Triangle is one face of a MeshInput with its corner samples.
type Triangle struct {
	Indices [3]uint16
	Corners [3]Corner
}

// MeshInput is one object supplied for export.
type MeshInput struct {
	Positions [][3]float32 // World space
	Normals   [][3]float32 // Missing entries export as zero
	Triangles []Triangle
	BBox      BBox
	Material  Material

	// Optional opaque regions; nil writes zeros.
	SecondStream []byte
	Secondary    []byte
}

// ExportInput is the ordered list of objects to export. Primary selects the
// mesh whose box becomes the file's global box.
type ExportInput struct {
	Meshes      []MeshInput
	Primary     int
	ObjectType  uint32 // Zero means ObjectTypeDefault
	SubMagic    uint16 // Zero means DefaultSubMagic
	FormatMagic uint16 // Zero means DefaultFormatMagic
}

// Build validates in and converts it to a File ready for Write.
// All failures are PreconditionErrors.
func Build(in ExportInput, q Quantization) (*File, error) {
	if len(in.Meshes) == 0 {
		return nil, precondition(-1, ErrNoInput)
	}
	if in.Primary < 0 || in.Primary >= len(in.Meshes) {
		return nil, precondition(-1, fmt.Errorf("%w: %d of %d", ErrPrimaryOutOfRange, in.Primary, len(in.Meshes)))
	}

	f := &File{
		Header: Header{
			Version:     Version,
			ObjectType:  in.ObjectType,
			SubMagic:    in.SubMagic,
			FormatMagic: in.FormatMagic,
			MeshCount:   uint32(len(in.Meshes)),
			BBox:        in.Meshes[in.Primary].BBox,
		},
		Meshes: make([]Mesh, 0, len(in.Meshes)),
	}
	if f.Header.ObjectType == 0 {
		f.Header.ObjectType = ObjectTypeDefault
	}
	if f.Header.SubMagic == 0 {
		f.Header.SubMagic = DefaultSubMagic
	}
	if f.Header.FormatMagic == 0 {
		f.Header.FormatMagic = DefaultFormatMagic
	}

	for i := range in.Meshes {
		m, err := BuildMesh(in.Meshes[i], q)
		if err == nil {
			err = m.validate(f.Header.ObjectType)
		}
		if err != nil {
			return nil, precondition(i, err)
		}
		f.Meshes = append(f.Meshes, m)
	}
	return f, nil
}

// BuildMesh collects the vertices referenced by the triangles in a single scan,
// in first-seen order. A vertex takes its UVs and RGB/XYZ samples from the
// corner where it is first seen; specular alpha and blend weight W always come
// from the first corner of that triangle. The stock exporter also takes blend
// weight XYZ from the first corner, which loses the per-vertex values a
// decoded file carries.
func BuildMesh(in MeshInput, q Quantization) (Mesh, error) {
	n := len(in.Positions)
	if n > MaxVertices {
		return Mesh{}, fmt.Errorf("%w: %d", ErrTooManyVertices, n)
	}
	if err := in.Material.validate(); err != nil {
		return Mesh{}, err
	}

	m := Mesh{
		VertexCount: uint32(n),
		Faces:       make([]Face, 0, len(in.Triangles)),
		Vertices:    NewVertexMap(n),
		BBox:        in.BBox,
		Material:    in.Material,

		SecondStream: in.SecondStream,
		Secondary:    in.Secondary,
	}

	for ti, tri := range in.Triangles {
		for c, idx := range tri.Indices {
			if int(idx) >= n {
				return Mesh{}, fmt.Errorf("%w: triangle %d index %d, %d vertices", ErrFaceIndexRange, ti, idx, n)
			}
			if m.Vertices.Has(idx) {
				continue
			}
			corner := tri.Corners[c]
			first := tri.Corners[0]

			var normal [3]float32
			if int(idx) < len(in.Normals) {
				normal = in.Normals[idx]
			}
			blend := VertexBlend{
				Position: in.Positions[idx],
				Normal:   [4]float32{normal[0], normal[1], normal[2], 1.0},
				Specular: [4]float32{
					corner.Specular[0], corner.Specular[1], corner.Specular[2], first.Specular[3],
				},
				UV0: corner.UV0,
				UV1: corner.UV1,
				BlendWeight: [4]float32{
					corner.BlendWeight[0], corner.BlendWeight[1], corner.BlendWeight[2], first.BlendWeight[3],
				},
			}
			m.Vertices.Add(Vertex{Index: idx, Blend: blend, Raw: q.BlendToRaw(blend)})
		}
		m.Faces = append(m.Faces, Face(tri.Indices))
	}

	if got := m.Vertices.Len(); got != n {
		return Mesh{}, fmt.Errorf("%w: %d of %d vertices referenced", ErrUnreferencedVertex, got, n)
	}
	return m, nil
}
