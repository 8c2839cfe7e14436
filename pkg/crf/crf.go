// Package crf reads and writes CRF mesh files used by Jagged Alliance: Back in Action.
//
// A file is a fixed header, a sequence of mesh blocks and two trailers whose
// offsets are back-patched into the header after they are written. Decoding is
// sequential; the bone data that follows each mesh in game files is not parsed.
package crf

import (
	"fmt"
	"io"
	"os"
)

// File format constants.
const (
	Magic            = "fknc"
	Version   uint32 = 1
	FileMagic uint64 = 0x1636E6B66 // Magic followed by Version, little-endian

	// HeaderSize is the header prefix excluded from the mesh section size.
	HeaderSize = 0x14

	trailerOffsetsAt = 0x08
)

// Header values written by the exporter.
const (
	ObjectTypeDefault   uint32 = 2
	ObjectTypeSecondary uint32 = 4 // Meshes carry an extra per-vertex list
	DefaultSubMagic     uint16 = 6
	DefaultFormatMagic  uint16 = 0xFFFF
)

// Header is the fixed file header.
type Header struct {
	Version        uint32
	Trailer1Offset uint32 // Informational on decode
	Trailer2Offset uint32 // Informational on decode
	ObjectType     uint32
	SubMagic       uint16
	FormatMagic    uint16
	MeshCount      uint32
	BBox           BBox // Taken from the primary mesh on export
}

// File is a decoded or to-be-encoded CRF file.
type File struct {
	Header   Header
	Meshes   []Mesh
	Trailer1 *Trailer1 // Nil if absent from the input
	Trailer2 *Trailer2 // Nil if absent from the input
}

// GetTotalVertexCount returns the number of vertices across all meshes.
func (f *File) GetTotalVertexCount() int {
	total := 0
	for i := range f.Meshes {
		total += int(f.Meshes[i].VertexCount)
	}
	return total
}

// GetTotalFaceCount returns the number of faces across all meshes.
func (f *File) GetTotalFaceCount() int {
	total := 0
	for i := range f.Meshes {
		total += len(f.Meshes[i].Faces)
	}
	return total
}

// Decoder parses CRF data, filling the blend domain with its Quantization.
type Decoder struct {
	Quantization Quantization
}

// NewDecoder returns a Decoder using q.
func NewDecoder(q Quantization) *Decoder {
	return &Decoder{Quantization: q}
}

// Parse parses CRF data with the default quantization.
func Parse(data []byte) (*File, error) {
	return NewDecoder(DefaultQuantization()).Parse(data)
}

// ParseFile parses a CRF file from disk with the default quantization.
func ParseFile(path string) (*File, error) {
	return NewDecoder(DefaultQuantization()).ParseFile(path)
}

// Parse parses CRF data. Any error aborts the whole file.
func (d *Decoder) Parse(data []byte) (*File, error) {
	if len(data) < 8 {
		return nil, &FormatError{Offset: 0, Err: ErrNotCRF}
	}
	r := newReader(data)
	if magic := r.u64(); magic != FileMagic {
		return nil, &FormatError{Offset: 0, Err: ErrNotCRF}
	}

	f := &File{}
	h := &f.Header
	h.Version = uint32(FileMagic >> 32)
	h.Trailer1Offset = r.u32()
	h.Trailer2Offset = r.u32()
	h.ObjectType = r.u32()
	h.SubMagic = r.u16()
	h.FormatMagic = r.u16()
	h.MeshCount = r.u32()
	h.BBox.Min = r.vec3()
	h.BBox.Max = r.vec3()
	if r.err != nil {
		return nil, r.err
	}

	for i := uint32(0); i < h.MeshCount; i++ {
		m, err := readMesh(r, h.ObjectType, d.Quantization)
		if err != nil {
			return nil, fmt.Errorf("parsing mesh %d: %w", i, err)
		}
		f.Meshes = append(f.Meshes, m)
	}

	f.Trailer1 = readTrailer1(data, h.Trailer1Offset)
	f.Trailer2 = readTrailer2(data, h.Trailer2Offset)
	return f, nil
}

// ParseFile parses a CRF file from disk.
func (d *Decoder) ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading CRF file: %w", err)
	}
	return d.Parse(data)
}

// Validate checks that f can be written. Failures are PreconditionErrors.
func (f *File) Validate() error {
	if len(f.Meshes) == 0 {
		return precondition(-1, ErrNoInput)
	}
	objectType := f.objectType()
	for i := range f.Meshes {
		if err := f.Meshes[i].validate(objectType); err != nil {
			return precondition(i, err)
		}
	}
	return nil
}

func (f *File) objectType() uint32 {
	if f.Header.ObjectType == 0 {
		return ObjectTypeDefault
	}
	return f.Header.ObjectType
}

// Write encodes f to ws. The file is validated before the first byte is
// written. Trailer offsets are patched into the header last. f is not modified.
func Write(ws io.WriteSeeker, f *File) error {
	if err := f.Validate(); err != nil {
		return err
	}
	w, err := newWriter(ws)
	if err != nil {
		return fmt.Errorf("locating stream start: %w", err)
	}
	start := w.pos

	h := f.Header
	if h.Version == 0 {
		h.Version = Version
	}
	if h.SubMagic == 0 {
		h.SubMagic = DefaultSubMagic
	}
	if h.FormatMagic == 0 {
		h.FormatMagic = DefaultFormatMagic
	}
	objectType := f.objectType()

	w.str(Magic)
	w.u32(h.Version)
	w.u32(0xFFFF, 0xFFFF) // trailer offsets, patched below
	w.u32(objectType)
	w.u16(h.SubMagic)
	w.u16(h.FormatMagic)
	w.u32(uint32(len(f.Meshes)))
	w.f32(h.BBox.Min[:]...)
	w.f32(h.BBox.Max[:]...)

	for i := range f.Meshes {
		if err := writeMesh(w, &f.Meshes[i], objectType); err != nil {
			return fmt.Errorf("writing mesh %d: %w", i, err)
		}
	}

	trailer1 := w.pos - start
	writeTrailer1(w, NewTrailer1(uint32(trailer1-HeaderSize)))
	trailer2 := w.pos - start
	writeTrailer2(w, NewTrailer2())

	w.patchU32(start+trailerOffsetsAt, uint32(trailer1), uint32(trailer2))
	if w.err != nil {
		return fmt.Errorf("writing CRF: %w", w.err)
	}
	return nil
}

// Marshal encodes f into a byte slice.
func Marshal(f *File) ([]byte, error) {
	m := &memFile{}
	if err := Write(m, f); err != nil {
		return nil, err
	}
	return m.Bytes(), nil
}

// WriteFile encodes f to path. On failure the partial file is removed.
func WriteFile(path string, f *File) (err error) {
	if err := f.Validate(); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CRF file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing CRF file: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return Write(out, f)
}
