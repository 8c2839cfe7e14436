// Package scene is the interchange side of crftool: a Document describes
// objects the way an authoring tool exports them, and converts to and from
// the codec's types.
package scene

import (
	"fmt"
	"os"

	"github.com/Faultbox/jabia-crf/internal/codec"
	"github.com/Faultbox/jabia-crf/pkg/crf"
	"github.com/Faultbox/jabia-crf/pkg/math"
)

// Document is an ordered list of objects to export, or the result of
// decoding a CRF file.
type Document struct {
	Primary     int      `yaml:"primary" json:"primary" msgpack:"primary"`
	ObjectType  uint32   `yaml:"object_type,omitempty" json:"object_type,omitempty" msgpack:"object_type,omitempty"`
	SubMagic    uint16   `yaml:"sub_magic,omitempty" json:"sub_magic,omitempty" msgpack:"sub_magic,omitempty"`
	FormatMagic uint16   `yaml:"format_magic,omitempty" json:"format_magic,omitempty" msgpack:"format_magic,omitempty"`
	Objects     []Object `yaml:"objects" json:"objects" msgpack:"objects"`
}

// Object is one triangulated mesh with its material.
type Object struct {
	Name      string       `yaml:"name" json:"name" msgpack:"name"`
	Transform *Transform   `yaml:"transform,omitempty" json:"transform,omitempty" msgpack:"transform,omitempty"`
	Positions [][3]float32 `yaml:"positions" json:"positions" msgpack:"positions"` // Object space
	Normals   [][3]float32 `yaml:"normals,omitempty" json:"normals,omitempty" msgpack:"normals,omitempty"`
	Faces     []Face       `yaml:"faces" json:"faces" msgpack:"faces"`
	Material  Material     `yaml:"material" json:"material" msgpack:"material"`

	// BBox overrides the box computed from Positions.
	BBox *crf.BBox `yaml:"bbox,omitempty" json:"bbox,omitempty" msgpack:"bbox,omitempty"`

	// Opaque per-vertex regions carried through from a decoded file.
	SecondStream []byte `yaml:"second_stream,omitempty" json:"second_stream,omitempty" msgpack:"second_stream,omitempty"`
	Secondary    []byte `yaml:"secondary,omitempty" json:"secondary,omitempty" msgpack:"secondary,omitempty"`
}

// Face is a triangle with its per-corner samples.
type Face struct {
	Indices [3]uint16 `yaml:"indices,flow" json:"indices" msgpack:"indices"`
	Corners [3]Corner `yaml:"corners" json:"corners" msgpack:"corners"`
}

// Corner carries the samples stored per triangle corner.
type Corner struct {
	UV0         [2]float32 `yaml:"uv0,flow" json:"uv0" msgpack:"uv0"`
	UV1         [2]float32 `yaml:"uv1,flow" json:"uv1" msgpack:"uv1"`
	Specular    [4]float32 `yaml:"specular,flow" json:"specular" msgpack:"specular"`          // R, G, B, A
	BlendWeight [4]float32 `yaml:"blendweight,flow" json:"blendweight" msgpack:"blendweight"` // X, Y, Z, W
}

// Material names the textures of an object. Names may carry a directory and
// an extension; both are dropped on export.
type Material struct {
	Diffuse        string       `yaml:"diffuse" json:"diffuse" msgpack:"diffuse"`
	Normal         string       `yaml:"normal" json:"normal" msgpack:"normal"`
	Specular       string       `yaml:"specular,omitempty" json:"specular,omitempty" msgpack:"specular,omitempty"`
	SpecularColors [][3]float32 `yaml:"specular_colors,omitempty" json:"specular_colors,omitempty" msgpack:"specular_colors,omitempty"`

	// Paths maps texture roles to files found on disk. Informational.
	Paths map[string]string `yaml:"paths,omitempty" json:"paths,omitempty" msgpack:"paths,omitempty"`
}

// Transform places an object in world space. Matrix wins when set; otherwise
// the transform is T * R * S, with R taken from the first of Quaternion,
// AxisAngle and the Euler angles that is set.
type Transform struct {
	Matrix      *[16]float32 `yaml:"matrix,omitempty,flow" json:"matrix,omitempty" msgpack:"matrix,omitempty"` // Column-major
	Translation [3]float32   `yaml:"translation,flow" json:"translation" msgpack:"translation"`
	Rotation    [3]float32   `yaml:"rotation,flow" json:"rotation" msgpack:"rotation"`                                     // Euler XYZ, degrees
	Quaternion  *[4]float32  `yaml:"quaternion,omitempty,flow" json:"quaternion,omitempty" msgpack:"quaternion,omitempty"` // W, X, Y, Z
	AxisAngle   *[4]float32  `yaml:"axis_angle,omitempty,flow" json:"axis_angle,omitempty" msgpack:"axis_angle,omitempty"` // Degrees, then axis X, Y, Z
	Scale       *[3]float32  `yaml:"scale,omitempty,flow" json:"scale,omitempty" msgpack:"scale,omitempty"`                // Nil means 1, 1, 1
}

const degToRad = 3.14159265358979323846264338327950288 / 180

// World returns the object-to-world matrix.
func (t *Transform) World() math.Mat4 {
	if t == nil {
		return math.Identity()
	}
	if t.Matrix != nil {
		return math.Mat4(*t.Matrix)
	}

	var rot math.Mat4
	switch {
	case t.Quaternion != nil:
		rot = math.QuatWXYZ(*t.Quaternion).ToMat4()
	case t.AxisAngle != nil:
		a := t.AxisAngle
		rot = math.QuatFromAxisAngle(math.Vec3{X: a[1], Y: a[2], Z: a[3]}, a[0]*degToRad).ToMat4()
	default:
		rot = math.EulerXYZ(t.Rotation[0]*degToRad, t.Rotation[1]*degToRad, t.Rotation[2]*degToRad)
	}
	scale := [3]float32{1, 1, 1}
	if t.Scale != nil {
		scale = *t.Scale
	}
	return math.Compose(t.Translation, rot, scale)
}

// Decode parses a document encoded with c.
func Decode(data []byte, c codec.Codec) (*Document, error) {
	var doc Document
	if err := c.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s document: %w", c.Name(), err)
	}
	return &doc, nil
}

// Encode serializes the document with c.
func (d *Document) Encode(c codec.Codec) ([]byte, error) {
	data, err := c.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding %s document: %w", c.Name(), err)
	}
	return data, nil
}

// ReadFile loads a document, choosing the codec from the file extension.
func ReadFile(path string) (*Document, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return Decode(data, c)
}

// WriteFile saves the document, choosing the codec from the file extension.
func (d *Document) WriteFile(path string) error {
	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}
	data, err := d.Encode(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
