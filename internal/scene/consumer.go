package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/jabia-crf/internal/logger"
	"github.com/Faultbox/jabia-crf/pkg/crf"
)

// FromFile materializes a decoded file as a document. Objects are named
// base_0, base_1 and so on. Corner samples are taken from the vertex each
// face corner references, with attributes dequantized through q. The header
// box and trailers are not represented.
func FromFile(f *crf.File, q crf.Quantization, base string) *Document {
	doc := &Document{
		ObjectType:  f.Header.ObjectType,
		SubMagic:    f.Header.SubMagic,
		FormatMagic: f.Header.FormatMagic,
		Objects:     make([]Object, 0, len(f.Meshes)),
	}

	for i := range f.Meshes {
		m := &f.Meshes[i]
		obj := Object{
			Name:         fmt.Sprintf("%s_%d", base, i),
			Positions:    make([][3]float32, 0, m.VertexCount),
			Normals:      make([][3]float32, 0, m.VertexCount),
			Faces:        make([]Face, len(m.Faces)),
			SecondStream: m.SecondStream,
			Secondary:    m.Secondary,
			Material: Material{
				Diffuse:        m.Material.Diffuse,
				Normal:         m.Material.Normal,
				Specular:       m.Material.Specular,
				SpecularColors: m.Material.SpecularColors,
			},
		}
		bbox := m.BBox
		obj.BBox = &bbox

		blend := make(map[uint16]crf.VertexBlend, m.Vertices.Len())
		for _, v := range m.Vertices.Vertices() {
			b := q.RawToBlend(v.Raw)
			blend[v.Index] = b
			obj.Positions = append(obj.Positions, b.Position)
			obj.Normals = append(obj.Normals, [3]float32{b.Normal[0], b.Normal[1], b.Normal[2]})
		}

		for fi, face := range m.Faces {
			obj.Faces[fi].Indices = face
			for c, idx := range face {
				b := blend[idx]
				obj.Faces[fi].Corners[c] = Corner{
					UV0:         b.UV0,
					UV1:         b.UV1,
					Specular:    b.Specular,
					BlendWeight: b.BlendWeight,
				}
			}
		}

		logger.Debug("mesh materialized",
			zap.String("name", obj.Name),
			zap.Uint32("vertices", m.VertexCount),
			zap.Int("faces", len(m.Faces)),
			zap.String("diffuse", obj.Material.Diffuse),
		)
		doc.Objects = append(doc.Objects, obj)
	}
	return doc
}
