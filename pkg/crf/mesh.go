package crf

import "fmt"

// Structural markers around the vertex stream.
const (
	vertexSentinel uint64 = 0x0000200c01802102
	separatorLo    uint32 = 0x00080000
	separatorHi    uint32 = 0x00000008
)

// Per-vertex sizes of the opaque regions.
const (
	secondStreamStride = 8 // float32 pair
	secondaryStride    = 4 // uint32
	secondaryPrefix    = 8 // two uint32 ahead of the list
)

// MaxVertices is the largest vertex count addressable by 16-bit face indices.
const MaxVertices = 1 << 16

// Face is a triangle as three vertex indices in authoring order.
type Face [3]uint16

// BBox is an axis-aligned bounding box.
type BBox struct {
	Min [3]float32 `yaml:"min" json:"min" msgpack:"min"`
	Max [3]float32 `yaml:"max" json:"max" msgpack:"max"`
}

// Mesh is one model block.
type Mesh struct {
	VertexCount uint32
	Faces       []Face
	Vertices    *VertexMap // Stream order; decoded indices equal stream position

	// SecondStream holds VertexCount float32 pairs whose purpose is unknown.
	// Nil writes zeros.
	SecondStream []byte

	// Secondary is the object type 4 per-vertex list, kept verbatim including
	// its two leading uint32. Nil writes zeros.
	Secondary []byte

	BBox     BBox
	Material Material
}

// SecondStreamSize returns the byte length of the second vertex stream.
func (m *Mesh) SecondStreamSize() int {
	return int(m.VertexCount) * secondStreamStride
}

// SecondarySize returns the byte length of the object type 4 list.
func (m *Mesh) SecondarySize() int {
	return secondaryPrefix + int(m.VertexCount)*secondaryStride
}

func (m *Mesh) validate(objectType uint32) error {
	if m.VertexCount > MaxVertices {
		return fmt.Errorf("%w: %d", ErrTooManyVertices, m.VertexCount)
	}
	if n := m.Vertices.Len(); n != int(m.VertexCount) {
		return fmt.Errorf("%w: %d vertices, count %d", ErrVertexCount, n, m.VertexCount)
	}
	for i, f := range m.Faces {
		for _, idx := range f {
			if uint32(idx) >= m.VertexCount {
				return fmt.Errorf("%w: face %d index %d, vertex count %d", ErrFaceIndexRange, i, idx, m.VertexCount)
			}
		}
	}
	if m.SecondStream != nil && len(m.SecondStream) != m.SecondStreamSize() {
		return fmt.Errorf("%w: second stream %d bytes", ErrOpaqueSize, len(m.SecondStream))
	}
	if objectType == ObjectTypeSecondary && m.Secondary != nil && len(m.Secondary) != m.SecondarySize() {
		return fmt.Errorf("%w: secondary list %d bytes", ErrOpaqueSize, len(m.Secondary))
	}
	return m.Material.validate()
}

// readMesh decodes one mesh block. Bone data following the material block is
// not part of the block and is never read.
func readMesh(r *reader, objectType uint32, q Quantization) (Mesh, error) {
	var m Mesh

	countOff := r.off
	m.VertexCount = r.u32()
	faceCount := r.u32()
	if r.err != nil {
		return m, r.err
	}
	if m.VertexCount > MaxVertices {
		r.failAt(countOff, "", fmt.Errorf("%w: %d", ErrTooManyVertices, m.VertexCount))
		return m, r.err
	}

	if uint64(faceCount)*6 > uint64(len(r.data)-r.off) {
		r.failAt(r.off, "", ErrTruncated)
		return m, r.err
	}
	m.Faces = make([]Face, faceCount)
	for i := range m.Faces {
		off := r.off
		f := Face{r.u16(), r.u16(), r.u16()}
		for _, idx := range f {
			if uint32(idx) >= m.VertexCount {
				r.failAt(off, "", fmt.Errorf("%w: face %d index %d", ErrFaceIndexRange, i, idx))
				return m, r.err
			}
		}
		m.Faces[i] = f
	}

	sentinelOff := r.off
	sentinel := r.u64()
	pad := r.u8()
	if r.err != nil {
		return m, r.err
	}
	if sentinel != vertexSentinel || pad != 0 {
		r.failAt(sentinelOff, "", fmt.Errorf("%w: 0x%016x", ErrBadSentinel, sentinel))
		return m, r.err
	}

	if uint64(m.VertexCount)*VertexRecordSize > uint64(len(r.data)-r.off) {
		r.failAt(r.off, "", ErrTruncated)
		return m, r.err
	}
	m.Vertices = NewVertexMap(int(m.VertexCount))
	for i := 0; i < int(m.VertexCount); i++ {
		raw := readVertexRaw(r)
		m.Vertices.Add(Vertex{Index: uint16(i), Raw: raw, Blend: q.RawToBlend(raw)})
	}

	sepOff := r.off
	lo, hi := r.u32(), r.u32()
	if r.err != nil {
		return m, r.err
	}
	if lo != separatorLo || hi != separatorHi {
		r.failAt(sepOff, "", fmt.Errorf("%w: 0x%08x 0x%08x", ErrBadSeparator, lo, hi))
		return m, r.err
	}

	m.SecondStream = r.bytes(m.SecondStreamSize())
	if objectType == ObjectTypeSecondary {
		m.Secondary = r.bytes(m.SecondarySize())
	}

	m.BBox.Min = r.vec3()
	m.BBox.Max = r.vec3()
	if r.err != nil {
		return m, r.err
	}

	mat, err := readMaterial(r)
	if err != nil {
		return m, err
	}
	m.Material = mat
	return m, nil
}

// writeMesh emits one mesh block. The mesh must have passed validate.
func writeMesh(w *writer, m *Mesh, objectType uint32) error {
	w.u32(m.VertexCount, uint32(len(m.Faces)))
	for _, f := range m.Faces {
		w.u16(f[0])
		w.u16(f[1])
		w.u16(f[2])
	}

	w.u64(vertexSentinel)
	w.u8(0)
	for _, v := range m.Vertices.Vertices() {
		writeVertexRaw(w, v.Raw)
	}

	w.u32(separatorLo, separatorHi)
	if m.SecondStream != nil {
		w.write(m.SecondStream)
	} else {
		w.zeros(m.SecondStreamSize())
	}
	if objectType == ObjectTypeSecondary {
		if m.Secondary != nil {
			w.write(m.Secondary)
		} else {
			w.zeros(m.SecondarySize())
		}
	}

	w.f32(m.BBox.Min[:]...)
	w.f32(m.BBox.Max[:]...)
	if w.err != nil {
		return w.err
	}
	return writeMaterial(w, m.Material)
}
