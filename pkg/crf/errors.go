package crf

import (
	"errors"
	"fmt"
)

// Format errors.
var (
	ErrNotCRF          = errors.New("crf: not a CRF file")
	ErrTruncated       = errors.New("crf: truncated data")
	ErrBadSentinel     = errors.New("crf: bad vertex stream sentinel")
	ErrBadSeparator    = errors.New("crf: bad second stream separator")
	ErrUnexpectedTag   = errors.New("crf: unexpected material tag")
	ErrBadMaterialFlag = errors.New("crf: unsupported material flag")
	ErrFaceIndexRange  = errors.New("crf: face index out of range")
)

// Precondition errors.
var (
	ErrNoInput            = errors.New("crf: no input object selected for export")
	ErrMissingTexture     = errors.New("crf: missing diffuse or normal texture")
	ErrTextureName        = errors.New("crf: texture name not representable in Windows-1252")
	ErrPrimaryOutOfRange  = errors.New("crf: primary index out of range")
	ErrTooManyVertices    = errors.New("crf: vertex count exceeds 16-bit index range")
	ErrUnreferencedVertex = errors.New("crf: vertex not referenced by any face")
	ErrVertexCount        = errors.New("crf: vertex stream length does not match vertex count")
	ErrOpaqueSize         = errors.New("crf: opaque region size does not match vertex count")
)

// FormatError reports a malformed or truncated stream. State is set when the
// failure happened inside the material grammar.
type FormatError struct {
	Offset int64
	State  string
	Err    error
}

func (e *FormatError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("%v at offset 0x%x (material state %s)", e.Err, e.Offset, e.State)
	}
	return fmt.Sprintf("%v at offset 0x%x", e.Err, e.Offset)
}

func (e *FormatError) Unwrap() error { return e.Err }

// PreconditionError reports export input that cannot be written. Mesh is the
// index of the offending input, or -1 when the failure is not mesh specific.
type PreconditionError struct {
	Mesh int
	Err  error
}

func (e *PreconditionError) Error() string {
	if e.Mesh < 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("mesh %d: %v", e.Mesh, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

func precondition(mesh int, err error) error {
	return &PreconditionError{Mesh: mesh, Err: err}
}
