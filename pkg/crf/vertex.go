package crf

// VertexRecordSize is the on-disk size of one raw vertex.
const VertexRecordSize = 32

// VertexRaw is a vertex in its quantized on-disk form.
//
// Layout: x,y,z float32 | normal xyzw uint8 | specular bgra uint8 |
// uv0 uv1 int16 | blend weight xyzw uint8.
type VertexRaw struct {
	Position    [3]float32 // Stored unquantized
	Normal      [4]uint8   // X, Y, Z, W
	Specular    [4]uint8   // R, G, B, A (written as B, G, R, A)
	UV0         [2]int16
	UV1         [2]int16
	BlendWeight [4]uint8 // X, Y, Z, W
}

// VertexBlend is a vertex in the floating-point authoring domain.
type VertexBlend struct {
	Position    [3]float32 `yaml:"position" json:"position" msgpack:"position"`
	Normal      [4]float32 `yaml:"normal" json:"normal" msgpack:"normal"`
	Specular    [4]float32 `yaml:"specular" json:"specular" msgpack:"specular"` // R, G, B, A
	UV0         [2]float32 `yaml:"uv0" json:"uv0" msgpack:"uv0"`
	UV1         [2]float32 `yaml:"uv1" json:"uv1" msgpack:"uv1"`
	BlendWeight [4]float32 `yaml:"blendweight" json:"blendweight" msgpack:"blendweight"`
}

// Vertex holds both representations of one vertex. Raw is what gets written,
// so a decoded vertex re-encodes to identical bytes.
type Vertex struct {
	Index uint16
	Blend VertexBlend
	Raw   VertexRaw
}

// BlendToRaw quantizes every attribute except position, which passes through.
func (q Quantization) BlendToRaw(b VertexBlend) VertexRaw {
	raw := VertexRaw{Position: b.Position}
	for i := 0; i < 4; i++ {
		raw.Normal[i] = q.Normal.QuantizeU8(b.Normal[i])
		raw.Specular[i] = q.Specular.QuantizeU8(b.Specular[i])
		raw.BlendWeight[i] = q.BlendWeight.QuantizeU8(b.BlendWeight[i])
	}
	for i := 0; i < 2; i++ {
		raw.UV0[i] = q.UV.QuantizeI16(b.UV0[i])
		raw.UV1[i] = q.UV.QuantizeI16(b.UV1[i])
	}
	return raw
}

// RawToBlend dequantizes every attribute. Normal W always decodes to 1.0.
func (q Quantization) RawToBlend(r VertexRaw) VertexBlend {
	b := VertexBlend{Position: r.Position}
	for i := 0; i < 3; i++ {
		b.Normal[i] = q.Normal.Dequantize(float64(r.Normal[i]))
	}
	b.Normal[3] = 1.0
	for i := 0; i < 4; i++ {
		b.Specular[i] = q.Specular.Dequantize(float64(r.Specular[i]))
		b.BlendWeight[i] = q.BlendWeight.Dequantize(float64(r.BlendWeight[i]))
	}
	for i := 0; i < 2; i++ {
		b.UV0[i] = q.UV.Dequantize(float64(r.UV0[i]))
		b.UV1[i] = q.UV.Dequantize(float64(r.UV1[i]))
	}
	return b
}

func readVertexRaw(r *reader) VertexRaw {
	var v VertexRaw
	v.Position = r.vec3()
	for i := range v.Normal {
		v.Normal[i] = r.u8()
	}
	v.Specular[2] = r.u8()
	v.Specular[1] = r.u8()
	v.Specular[0] = r.u8()
	v.Specular[3] = r.u8()
	v.UV0[0], v.UV0[1] = r.i16(), r.i16()
	v.UV1[0], v.UV1[1] = r.i16(), r.i16()
	for i := range v.BlendWeight {
		v.BlendWeight[i] = r.u8()
	}
	return v
}

func writeVertexRaw(w *writer, v VertexRaw) {
	w.f32(v.Position[:]...)
	w.write(v.Normal[:])
	w.write([]byte{v.Specular[2], v.Specular[1], v.Specular[0], v.Specular[3]})
	w.i16(v.UV0[0])
	w.i16(v.UV0[1])
	w.i16(v.UV1[0])
	w.i16(v.UV1[1])
	w.write(v.BlendWeight[:])
}

// VertexMap is an index -> vertex mapping that iterates in insertion order.
type VertexMap struct {
	order []uint16
	byIdx map[uint16]int
	verts []Vertex
}

// NewVertexMap returns an empty map with room for n vertices.
func NewVertexMap(n int) *VertexMap {
	return &VertexMap{
		order: make([]uint16, 0, n),
		byIdx: make(map[uint16]int, n),
		verts: make([]Vertex, 0, n),
	}
}

// Add inserts v under v.Index unless the index is already present, and
// reports whether it was inserted.
func (m *VertexMap) Add(v Vertex) bool {
	if m.byIdx == nil {
		m.byIdx = make(map[uint16]int)
	}
	if _, ok := m.byIdx[v.Index]; ok {
		return false
	}
	m.byIdx[v.Index] = len(m.verts)
	m.order = append(m.order, v.Index)
	m.verts = append(m.verts, v)
	return true
}

// Has reports whether idx is present.
func (m *VertexMap) Has(idx uint16) bool {
	_, ok := m.byIdx[idx]
	return ok
}

// Get returns the vertex stored under idx.
func (m *VertexMap) Get(idx uint16) (Vertex, bool) {
	i, ok := m.byIdx[idx]
	if !ok {
		return Vertex{}, false
	}
	return m.verts[i], true
}

// Len returns the number of vertices.
func (m *VertexMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.verts)
}

// Keys returns the indices in insertion order.
func (m *VertexMap) Keys() []uint16 {
	if m == nil {
		return nil
	}
	return append([]uint16(nil), m.order...)
}

// Vertices returns the vertices in insertion order.
func (m *VertexMap) Vertices() []Vertex {
	if m == nil {
		return nil
	}
	return append([]Vertex(nil), m.verts...)
}
