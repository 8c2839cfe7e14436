package scene

import (
	"go.uber.org/zap"

	"github.com/Faultbox/jabia-crf/internal/logger"
	"github.com/Faultbox/jabia-crf/pkg/crf"
	"github.com/Faultbox/jabia-crf/pkg/encoding"
	"github.com/Faultbox/jabia-crf/pkg/math"
)

// ExportInput converts the document to export input. Positions are moved
// to world space; normals are not transformed. Each mesh box is computed
// from the object-space positions unless the object sets one. Texture names
// lose their directory and extension.
//
// Validation is left to crf.Build.
func (d *Document) ExportInput() crf.ExportInput {
	in := crf.ExportInput{
		Meshes:      make([]crf.MeshInput, 0, len(d.Objects)),
		Primary:     d.Primary,
		ObjectType:  d.ObjectType,
		SubMagic:    d.SubMagic,
		FormatMagic: d.FormatMagic,
	}
	for i := range d.Objects {
		in.Meshes = append(in.Meshes, d.Objects[i].meshInput())
	}
	return in
}

func (o *Object) meshInput() crf.MeshInput {
	world := o.Transform.World()

	positions := o.Positions
	if !world.IsIdentity() {
		positions = make([][3]float32, len(o.Positions))
		for i, p := range o.Positions {
			positions[i] = world.TransformPoint(p)
		}
	}

	var bbox crf.BBox
	if o.BBox != nil {
		bbox = *o.BBox
	} else if b := math.BoxOf(o.Positions); b.IsEmpty() {
		logger.Warn("object has no vertices, writing a zero box", zap.String("name", o.Name))
	} else {
		bbox = crf.BBox{Min: b.Min.Array(), Max: b.Max.Array()}
		size := b.Size()
		logger.Debug("object box", zap.String("name", o.Name), zap.Float32s("size", []float32{size.X, size.Y, size.Z}))
	}

	triangles := make([]crf.Triangle, len(o.Faces))
	for i, f := range o.Faces {
		triangles[i].Indices = f.Indices
		for c, corner := range f.Corners {
			triangles[i].Corners[c] = crf.Corner(corner)
		}
	}

	mat := crf.Material{
		Diffuse:        encoding.TextureName(o.Material.Diffuse),
		Normal:         encoding.TextureName(o.Material.Normal),
		Specular:       encoding.TextureName(o.Material.Specular),
		SpecularColors: o.Material.SpecularColors,
	}

	logger.Debug("object prepared for export",
		zap.String("name", o.Name),
		zap.Int("vertices", len(positions)),
		zap.Int("faces", len(triangles)),
		zap.Bool("transformed", !world.IsIdentity()),
		zap.String("diffuse", mat.Diffuse),
		zap.String("normal", mat.Normal),
		zap.String("specular", mat.Specular),
	)

	return crf.MeshInput{
		Positions:    positions,
		Normals:      o.Normals,
		Triangles:    triangles,
		BBox:         bbox,
		Material:     mat,
		SecondStream: o.SecondStream,
		Secondary:    o.Secondary,
	}
}
