package crf

// Trailer constants.
const (
	Trailer1Magic   uint32 = 0x1b4f7cc7
	Trailer1Size           = 64
	trailer2Root           = "root node"
	trailer2Content        = "meshfile"
)

// Trailer1 follows the last mesh block and records the mesh section length.
type Trailer1 struct {
	Lead            [8]uint32
	Magic           uint32
	Version         uint32
	HeaderSize      uint32
	MeshSectionSize uint32 // Trailer1 offset minus HeaderSize
	Reserved        [4]uint32
}

// NewTrailer1 returns the trailer written by the exporter.
func NewTrailer1(meshSectionSize uint32) Trailer1 {
	return Trailer1{
		Lead:            [8]uint32{0, 0, 0, 0, 0xFFFFFFFF, 1, 1, 0},
		Magic:           Trailer1Magic,
		Version:         1,
		HeaderSize:      HeaderSize,
		MeshSectionSize: meshSectionSize,
	}
}

// Trailer2 is a small node descriptor naming the file content.
type Trailer2 struct {
	Root     string // "root node"
	Children uint32
	Content  string // "meshfile"
}

// NewTrailer2 returns the descriptor written by the exporter.
func NewTrailer2() Trailer2 {
	return Trailer2{Root: trailer2Root, Children: 1, Content: trailer2Content}
}

func writeTrailer1(w *writer, t Trailer1) {
	w.u32(t.Lead[:]...)
	w.u32(t.Magic, t.Version, t.HeaderSize, t.MeshSectionSize)
	w.u32(t.Reserved[:]...)
}

func writeTrailer2(w *writer, t Trailer2) {
	w.u32(0, 0, uint32(len(t.Root)))
	w.str(t.Root)
	w.u32(t.Children, uint32(len(t.Content)))
	w.str(t.Content)
	w.u32(0)
}

// readTrailer1 parses trailer-1 at off. It returns nil when the offset is out
// of range or the magic does not match; trailers are informational.
func readTrailer1(data []byte, off uint32) *Trailer1 {
	if off == 0 || uint64(off)+Trailer1Size > uint64(len(data)) {
		return nil
	}
	r := newReader(data[off:])
	var t Trailer1
	for i := range t.Lead {
		t.Lead[i] = r.u32()
	}
	t.Magic, t.Version, t.HeaderSize, t.MeshSectionSize = r.u32(), r.u32(), r.u32(), r.u32()
	for i := range t.Reserved {
		t.Reserved[i] = r.u32()
	}
	if r.err != nil || t.Magic != Trailer1Magic {
		return nil
	}
	return &t
}

// readTrailer2 parses trailer-2 at off, or returns nil.
func readTrailer2(data []byte, off uint32) *Trailer2 {
	if off == 0 || uint64(off) >= uint64(len(data)) {
		return nil
	}
	r := newReader(data[off:])
	r.u32()
	r.u32()
	n := r.u32()
	if r.err != nil || uint64(n) > uint64(len(r.data)) {
		return nil
	}
	var t Trailer2
	t.Root = r.tag(int(n))
	t.Children = r.u32()
	n = r.u32()
	if r.err != nil || uint64(n) > uint64(len(r.data)) {
		return nil
	}
	t.Content = r.tag(int(n))
	r.u32()
	if r.err != nil {
		return nil
	}
	return &t
}
