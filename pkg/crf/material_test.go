package crf

import (
	"bytes"
	"reflect"
	"testing"
)

func materialPrefix() *blob {
	b := new(blob)
	b.tag("nm").u32(1, 4).
		tag("sffd").name("tex_d").u32(0).
		tag("smrn").name("tex_n").u32(0)
	return b
}

func TestWriteMaterial_ConstantOnlyBytes(t *testing.T) {
	got := encodeWith(t, func(w *writer) error {
		return writeMaterial(w, testMaterial())
	})

	want := materialPrefix()
	want.tag("1tsc").u32(0, 0).
		tag("lcps").u32(0, 0, 2).
		tag("lcps").f32(0.2, 0.3, 0.4).
		tag("1tsc").u32(0, 0, 0, 1).
		tag("1tsc").u32(0, 2).zeros(16)

	if !bytes.Equal(got, want.Bytes()) {
		t.Errorf("constant-only material bytes mismatch\ngot:  % x\nwant: % x", got, want.Bytes())
	}
}

func TestWriteMaterial_SpecularTextureBytes(t *testing.T) {
	mat := testMaterial()
	mat.Specular = "tex_s"
	got := encodeWith(t, func(w *writer) error {
		return writeMaterial(w, mat)
	})

	want := materialPrefix()
	want.tag("1tsc").u32(0, 0).
		tag("lcps").name("tex_s").u32(0, 2).
		tag("lcps").f32(0.2, 0.3, 0.4).
		tag("1tsc").u32(0, 0, 0, 1).
		tag("1tsc").u32(0, 0).zeros(16)

	if !bytes.Equal(got, want.Bytes()) {
		t.Errorf("specular material bytes mismatch\ngot:  % x\nwant: % x", got, want.Bytes())
	}
}

func TestWriteMaterial_SpecularTexturePadsExporterLayout(t *testing.T) {
	mat := testMaterial()
	mat.Specular = "tex_s"
	got := encodeWith(t, func(w *writer) error {
		return writeMaterial(w, mat)
	})

	exporter := materialPrefix()
	exporter.tag("1tsc").u32(0, 0).
		tag("lcps").name("tex_s").u32(0, 2).
		tag("lcps").f32(0.2, 0.3, 0.4).
		tag("1tsc").u32(0, 0, 0, 1).
		tag("1tsc").u32(0, 0)
	if exporter.Len() != 125 {
		t.Fatalf("exporter layout is %d bytes, want 125", exporter.Len())
	}

	if !bytes.HasPrefix(got, exporter.Bytes()) {
		t.Fatalf("output does not start with the exporter layout\ngot:  % x\nwant: % x", got, exporter.Bytes())
	}
	if pad := got[exporter.Len():]; !bytes.Equal(pad, make([]byte, 16)) {
		t.Errorf("padding = % x, want 16 zero bytes", pad)
	}

	// The reader consumes exactly what was written, padding included.
	r := newReader(got)
	back, err := readMaterial(r)
	if err != nil {
		t.Fatalf("readMaterial() error = %v", err)
	}
	if r.off != len(got) {
		t.Errorf("reader stopped at %d, want %d", r.off, len(got))
	}
	if back.Specular != "tex_s" {
		t.Errorf("Specular = %q, want %q", back.Specular, "tex_s")
	}
}

func TestMaterial_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		mat  Material
	}{
		{
			name: "constant only",
			mat:  testMaterial(),
		},
		{
			name: "specular texture",
			mat: Material{
				Diffuse:        "colt_m16a4_01",
				Normal:         "colt_m16a4_01_n",
				Specular:       "colt_m16a4_01_s",
				SpecularColors: [][3]float32{{0.9, 0.8, 0.7}},
			},
		},
		{
			name: "non-ascii names",
			mat: Material{
				Diffuse:        "café_d",
				Normal:         "café_n",
				SpecularColors: [][3]float32{{0, 0, 0}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeWith(t, func(w *writer) error {
				return writeMaterial(w, tt.mat)
			})

			r := newReader(data)
			got, err := readMaterial(r)
			if err != nil {
				t.Fatalf("readMaterial failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.mat) {
				t.Errorf("got %+v, want %+v", got, tt.mat)
			}
			if r.off != len(data) {
				t.Errorf("consumed %d of %d bytes", r.off, len(data))
			}
		})
	}
}

func TestMaterial_NameBytesSurviveRoundTrip(t *testing.T) {
	b := new(blob)
	b.tag("nm").u32(1, 4).
		tag("sffd").name("tex\x81d").u32(0).
		tag("smrn").name("tex_n\x00").u32(0).
		tag("1tsc").u32(0, 0).
		tag("lcps").u32(0, 0, 2).
		tag("lcps").f32(0.2, 0.3, 0.4).
		tag("1tsc").u32(0, 0, 0, 1).
		tag("1tsc").u32(0, 2).zeros(16)

	mat, err := readMaterial(newReader(b.Bytes()))
	if err != nil {
		t.Fatalf("readMaterial failed: %v", err)
	}
	if err := mat.validate(); err != nil {
		t.Fatalf("decoded material does not validate: %v", err)
	}

	got := encodeWith(t, func(w *writer) error {
		return writeMaterial(w, mat)
	})
	if !bytes.Equal(got, b.Bytes()) {
		t.Errorf("material bytes changed\ngot:  % x\nwant: % x", got, b.Bytes())
	}
}

func TestMaterial_MissingColorWritesBlack(t *testing.T) {
	mat := Material{Diffuse: "d", Normal: "n"}
	data := encodeWith(t, func(w *writer) error {
		return writeMaterial(w, mat)
	})

	got, err := readMaterial(newReader(data))
	if err != nil {
		t.Fatalf("readMaterial failed: %v", err)
	}
	want := [][3]float32{{0, 0, 0}}
	if !reflect.DeepEqual(got.SpecularColors, want) {
		t.Errorf("SpecularColors = %v, want %v", got.SpecularColors, want)
	}
}

func TestWriteMaterial_MissingTexture(t *testing.T) {
	m := &memFile{}
	w, _ := newWriter(m)
	if err := writeMaterial(w, Material{Diffuse: "d"}); err != ErrMissingTexture {
		t.Errorf("expected ErrMissingTexture, got %v", err)
	}
}

func TestReadMaterial_FlagOneBranch(t *testing.T) {
	b := materialPrefix()
	b.tag("1tsc").u32(0, 0).
		tag("lcps").u32(0).
		u32(0, 1).tag("lcps").f32(0.5, 0.5, 0.5).
		zeros(24)

	r := newReader(b.Bytes())
	got, err := readMaterial(r)
	if err != nil {
		t.Fatalf("readMaterial failed: %v", err)
	}
	if got.Specular != "" {
		t.Errorf("expected no specular texture, got %q", got.Specular)
	}
	if len(got.SpecularColors) != 1 || got.SpecularColors[0] != [3]float32{0.5, 0.5, 0.5} {
		t.Errorf("unexpected specular colors %v", got.SpecularColors)
	}
	if r.off != b.Len() {
		t.Errorf("consumed %d of %d bytes", r.off, b.Len())
	}
}

func TestReadMaterial_SpecularFromDispatch(t *testing.T) {
	b := materialPrefix()
	b.tag("lcps").name("tex_s").
		u32(0, 1).tag("lcps").f32(1, 0, 0).
		zeros(24)

	got, err := readMaterial(newReader(b.Bytes()))
	if err != nil {
		t.Fatalf("readMaterial failed: %v", err)
	}
	if got.Diffuse != "tex_d" || got.Normal != "tex_n" || got.Specular != "tex_s" {
		t.Errorf("unexpected names %+v", got)
	}
}

func TestReadMaterial_Errors(t *testing.T) {
	prefixLen := materialPrefix().Len()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
		state   string
		offset  int64
	}{
		{
			name:    "bad section tag",
			data:    new(blob).tag("xx").u32(1, 4).Bytes(),
			wantErr: ErrUnexpectedTag,
			state:   "Start",
			offset:  0,
		},
		{
			name:    "unknown tag",
			data:    new(blob).tag("nm").u32(1, 4).tag("abcd").Bytes(),
			wantErr: ErrUnexpectedTag,
			state:   "Dispatch",
			offset:  10,
		},
		{
			name:    "empty diffuse name",
			data:    new(blob).tag("nm").u32(1, 4).tag("sffd").u32(0).Bytes(),
			wantErr: ErrEmptyTextureName,
			state:   "Len(Diffuse)",
			offset:  14,
		},
		{
			name:    "truncated name",
			data:    new(blob).tag("nm").u32(1, 4).tag("sffd").u32(50).tag("ab").Bytes(),
			wantErr: ErrTruncated,
			state:   "ReadName(Diffuse)",
			offset:  18,
		},
		{
			name:    "non-zero pair",
			data:    new(blob).tag("nm").u32(1, 4).tag("1tsc").u32(1, 0).Bytes(),
			wantErr: ErrBadMaterialFlag,
			state:   "CheckPair",
			offset:  14,
		},
		{
			name:    "pair followed by wrong tag",
			data:    new(blob).tag("nm").u32(1, 4).tag("1tsc").u32(0, 0).tag("sffd").u32(0).Bytes(),
			wantErr: ErrUnexpectedTag,
			state:   "CheckPair",
			offset:  22,
		},
		{
			name: "unsupported flag",
			data: func() []byte {
				b := materialPrefix()
				b.tag("1tsc").u32(0, 0).tag("lcps").u32(0).
					u32(0, 7).tag("lcps").f32(0, 0, 0)
				return b.Bytes()
			}(),
			wantErr: ErrBadMaterialFlag,
			state:   "SpecularConst",
			offset:  int64(prefixLen + 4 + 8 + 4 + 4 + 4),
		},
		{
			name: "color tag mismatch",
			data: func() []byte {
				b := materialPrefix()
				b.tag("1tsc").u32(0, 0).tag("lcps").u32(0).
					u32(0, 1).tag("1tsc").f32(0, 0, 0)
				return b.Bytes()
			}(),
			wantErr: ErrUnexpectedTag,
			state:   "SpecularConst",
			offset:  int64(prefixLen + 4 + 8 + 4 + 4 + 8),
		},
		{
			name: "truncated trailer",
			data: func() []byte {
				b := materialPrefix()
				b.tag("1tsc").u32(0, 0).tag("lcps").u32(0).
					u32(0, 1).tag("lcps").f32(0, 0, 0).zeros(10)
				return b.Bytes()
			}(),
			wantErr: ErrTruncated,
			state:   "SpecularConst",
			offset:  int64(prefixLen + 4 + 8 + 4 + 4 + 8 + 4 + 12),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readMaterial(newReader(tt.data))
			fe := asFormatError(t, err, tt.wantErr)
			if fe.State != tt.state {
				t.Errorf("state = %q, want %q", fe.State, tt.state)
			}
			if fe.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", fe.Offset, tt.offset)
			}
		})
	}
}

func TestTextureKind_String(t *testing.T) {
	tests := []struct {
		kind textureKind
		want string
	}{
		{kindDiffuse, "Diffuse"},
		{kindNormals, "Normals"},
		{kindSpecular, "Specular"},
		{textureKind(9), "Unknown(9)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
