package crf

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// reader walks a byte slice and remembers the first failure. Once err is set
// every read is a no-op returning zero values, so callers check err at section
// boundaries instead of after every field.
type reader struct {
	data []byte
	off  int
	err  error
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) pos() int64 { return int64(r.off) }

func (r *reader) failAt(off int, state string, err error) {
	if r.err == nil {
		r.err = &FormatError{Offset: int64(off), State: state, Err: err}
	}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.failAt(r.off, "", ErrTruncated)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) i16() int16 { return int16(r.u16()) }

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) f32() float32 { return math.Float32frombits(r.u32()) }

func (r *reader) vec3() [3]float32 {
	return [3]float32{r.f32(), r.f32(), r.f32()}
}

// bytes returns a copy so decoded values never alias the input buffer.
func (r *reader) bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (r *reader) tag(n int) string {
	return string(r.take(n))
}

func (r *reader) skip(n int) { r.take(n) }

// writer is the encode-side counterpart of reader. It tracks the absolute
// stream position so trailer offsets can be computed and back-patched.
type writer struct {
	w   io.WriteSeeker
	pos int64
	err error
	buf [8]byte
}

func newWriter(w io.WriteSeeker) (*writer, error) {
	pos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &writer{w: w, pos: pos}, nil
}

func (w *writer) write(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	w.pos += int64(n)
	w.err = err
}

func (w *writer) u8(v uint8) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

func (w *writer) u16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

func (w *writer) i16(v int16) { w.u16(uint16(v)) }

func (w *writer) u32(vs ...uint32) {
	for _, v := range vs {
		binary.LittleEndian.PutUint32(w.buf[:4], v)
		w.write(w.buf[:4])
	}
}

func (w *writer) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	w.write(w.buf[:8])
}

func (w *writer) f32(vs ...float32) {
	for _, v := range vs {
		w.u32(math.Float32bits(v))
	}
}

func (w *writer) str(s string) { w.write([]byte(s)) }

func (w *writer) zeros(n int) { w.write(make([]byte, n)) }

// patchU32 overwrites consecutive uint32 values at an absolute offset and
// returns to the previous end of stream.
func (w *writer) patchU32(at int64, vs ...uint32) {
	if w.err != nil {
		return
	}
	end := w.pos
	if _, err := w.w.Seek(at, io.SeekStart); err != nil {
		w.err = err
		return
	}
	w.pos = at
	w.u32(vs...)
	if w.err != nil {
		return
	}
	if _, err := w.w.Seek(end, io.SeekStart); err != nil {
		w.err = err
		return
	}
	w.pos = end
}

// memFile is an in-memory io.WriteSeeker backing Marshal.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	if need := m.pos + len(p); need > len(m.buf) {
		if need > cap(m.buf) {
			grown := make([]byte, need, 2*need)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:need]
		}
	}
	copy(m.buf[m.pos:], p)
	m.pos += len(p)
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("crf: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("crf: negative position")
	}
	m.pos = int(abs)
	return abs, nil
}

func (m *memFile) Bytes() []byte { return m.buf }
