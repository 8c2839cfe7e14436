package crf

import (
	"errors"
	"fmt"

	"github.com/Faultbox/jabia-crf/pkg/encoding"
)

// Material tags, stored as raw bytes.
const (
	tagSection  = "nm"
	tagDiffuse  = "sffd"
	tagNormals  = "smrn"
	tagSpecular = "lcps"
	tagConst    = "1tsc"
)

// Material block trailer length consumed after the last tag.
const materialTrailerSize = 24

// ErrEmptyTextureName is returned when a diffuse or normal entry has zero length.
var ErrEmptyTextureName = errors.New("crf: empty texture name")

// Material describes the textures and constant colors referenced by a mesh.
type Material struct {
	Diffuse        string       // Diffuse texture name, no extension
	Normal         string       // Normal map texture name, no extension
	Specular       string       // Optional specular texture name
	SpecularColors [][3]float32 // Constant specular RGB colors
}

// validate checks the required textures are set and every name fits the
// single-byte code page.
func (m Material) validate() error {
	if m.Diffuse == "" || m.Normal == "" {
		return ErrMissingTexture
	}
	for _, name := range []string{m.Diffuse, m.Normal, m.Specular} {
		if _, err := encoding.EncodeName(name); err != nil {
			return fmt.Errorf("%w: %v", ErrTextureName, err)
		}
	}
	return nil
}

// textureKind selects which Material field a length-prefixed name fills.
type textureKind int

const (
	kindDiffuse textureKind = iota
	kindNormals
	kindSpecular
)

func (k textureKind) String() string {
	switch k {
	case kindDiffuse:
		return "Diffuse"
	case kindNormals:
		return "Normals"
	case kindSpecular:
		return "Specular"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// materialState is one node of the material grammar. Each variant holds only
// the data its transition needs; step consumes input and returns the next state.
type materialState interface {
	name() string
	step(p *materialParser) materialState
}

type materialParser struct {
	r   *reader
	mat Material
}

type (
	stateStart    struct{}
	stateDispatch struct{}
	stateLen      struct{ kind textureKind }
	stateReadName struct {
		kind   textureKind
		length uint32
	}
	stateCheckPair     struct{}
	stateSpecularConst struct{}
	stateDone          struct{}
	stateError         struct {
		from string
		off  int
		err  error
	}
)

func (stateStart) name() string         { return "Start" }
func (stateDispatch) name() string      { return "Dispatch" }
func (s stateLen) name() string         { return "Len(" + s.kind.String() + ")" }
func (s stateReadName) name() string    { return "ReadName(" + s.kind.String() + ")" }
func (stateCheckPair) name() string     { return "CheckPair" }
func (stateSpecularConst) name() string { return "SpecularConst" }
func (stateDone) name() string          { return "Done" }
func (stateError) name() string         { return "Error" }

func fail(from materialState, off int, err error) materialState {
	return stateError{from: from.name(), off: off, err: err}
}

func unexpectedTag(from materialState, off int, tag string) materialState {
	return fail(from, off, fmt.Errorf("%w %q", ErrUnexpectedTag, tag))
}

func (s stateStart) step(p *materialParser) materialState {
	off := p.r.off
	tag := p.r.tag(len(tagSection))
	p.r.u32() // section count
	p.r.u32() // field count
	if p.r.err != nil {
		return s
	}
	if tag != tagSection {
		return unexpectedTag(s, off, tag)
	}
	return stateDispatch{}
}

func (s stateDispatch) step(p *materialParser) materialState {
	off := p.r.off
	tag := p.r.tag(4)
	if p.r.err != nil {
		return s
	}
	switch tag {
	case tagDiffuse:
		return stateLen{kind: kindDiffuse}
	case tagNormals:
		return stateLen{kind: kindNormals}
	case tagSpecular:
		return stateLen{kind: kindSpecular}
	case tagConst:
		return stateCheckPair{}
	default:
		return unexpectedTag(s, off, tag)
	}
}

func (s stateLen) step(p *materialParser) materialState {
	off := p.r.off
	length := p.r.u32()
	if p.r.err != nil {
		return s
	}
	switch {
	case length > 0:
		return stateReadName{kind: s.kind, length: length}
	case s.kind == kindSpecular:
		return stateSpecularConst{}
	default:
		return fail(s, off, ErrEmptyTextureName)
	}
}

func (s stateReadName) step(p *materialParser) materialState {
	if uint64(s.length) > uint64(len(p.r.data)) {
		p.r.failAt(p.r.off, "", ErrTruncated)
		return s
	}
	name := encoding.DecodeName(p.r.take(int(s.length)))
	if p.r.err != nil {
		return s
	}
	switch s.kind {
	case kindDiffuse:
		p.mat.Diffuse = name
		p.r.u32() // pad
		return stateDispatch{}
	case kindNormals:
		p.mat.Normal = name
		p.r.u32() // pad
		return stateDispatch{}
	default:
		p.mat.Specular = name
		return stateSpecularConst{}
	}
}

func (s stateCheckPair) step(p *materialParser) materialState {
	off := p.r.off
	a, b := p.r.u32(), p.r.u32()
	if p.r.err != nil {
		return s
	}
	if a != 0 || b != 0 {
		return fail(s, off, fmt.Errorf("%w: pair (%d, %d)", ErrBadMaterialFlag, a, b))
	}
	off = p.r.off
	tag := p.r.tag(4)
	length := p.r.u32()
	if p.r.err != nil {
		return s
	}
	if tag != tagSpecular {
		return unexpectedTag(s, off, tag)
	}
	if length != 0 {
		return stateReadName{kind: kindSpecular, length: length}
	}
	return stateSpecularConst{}
}

func (s stateSpecularConst) step(p *materialParser) materialState {
	p.r.u32()
	flagOff := p.r.off
	flag := p.r.u32()
	tagOff := p.r.off
	tag := p.r.tag(4)
	if p.r.err != nil {
		return s
	}
	if tag != tagSpecular {
		return unexpectedTag(s, tagOff, tag)
	}
	p.mat.SpecularColors = append(p.mat.SpecularColors, p.r.vec3())

	switch flag {
	case 2:
		p.r.skip(4)
		p.r.skip(16)
		p.r.skip(4)
		p.r.skip(materialTrailerSize)
	case 1:
		p.r.skip(materialTrailerSize)
	default:
		return fail(s, flagOff, fmt.Errorf("%w: %d", ErrBadMaterialFlag, flag))
	}
	if p.r.err != nil {
		return s
	}
	return stateDone{}
}

func (s stateDone) step(*materialParser) materialState  { return s }
func (s stateError) step(*materialParser) materialState { return s }

// readMaterial runs the material grammar from Start to a terminal state.
func readMaterial(r *reader) (Material, error) {
	p := &materialParser{r: r}
	var st materialState = stateStart{}
	for {
		switch s := st.(type) {
		case stateDone:
			return p.mat, nil
		case stateError:
			r.failAt(s.off, s.from, s.err)
			return Material{}, r.err
		}

		cur := st
		st = cur.step(p)
		if r.err != nil {
			var fe *FormatError
			if errors.As(r.err, &fe) && fe.State == "" {
				fe.State = cur.name()
			}
			return Material{}, r.err
		}
	}
}

// writeMaterial emits the material block. A specular texture selects the
// texture-plus-fallback-color branch, otherwise the constant-only branch.
// Only the first specular color is written; black is used when none is set.
func writeMaterial(w *writer, m Material) error {
	if m.Diffuse == "" || m.Normal == "" {
		return ErrMissingTexture
	}
	diffuse, err := encoding.EncodeName(m.Diffuse)
	if err != nil {
		return err
	}
	normal, err := encoding.EncodeName(m.Normal)
	if err != nil {
		return err
	}
	var specular []byte
	if m.Specular != "" {
		if specular, err = encoding.EncodeName(m.Specular); err != nil {
			return err
		}
	}
	var color [3]float32
	if len(m.SpecularColors) > 0 {
		color = m.SpecularColors[0]
	}

	w.str(tagSection)
	w.u32(1, 4)
	w.str(tagDiffuse)
	w.u32(uint32(len(diffuse)))
	w.write(diffuse)
	w.u32(0)
	w.str(tagNormals)
	w.u32(uint32(len(normal)))
	w.write(normal)
	w.u32(0)
	w.str(tagConst)
	w.u32(0, 0)

	if specular != nil {
		w.str(tagSpecular)
		w.u32(uint32(len(specular)))
		w.write(specular)
		w.u32(0, 2)
		w.str(tagSpecular)
		w.f32(color[:]...)
		w.str(tagConst)
		w.u32(0, 0, 0, 1)
		w.str(tagConst)
		w.u32(0, 0)
		// The stock exporter stops here. Flag 2 readers still consume a
		// full trailer, so the missing 16 bytes are padded with zeros.
		w.zeros(materialTrailerSize - 8)
	} else {
		w.str(tagSpecular)
		w.u32(0, 0, 2)
		w.str(tagSpecular)
		w.f32(color[:]...)
		w.str(tagConst)
		w.u32(0, 0, 0, 1)
		w.str(tagConst)
		w.u32(0, 2)
		w.zeros(materialTrailerSize - 8)
	}
	return w.err
}
