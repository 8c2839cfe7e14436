package crf

import (
	"bytes"
	"math"
	"testing"
)

func TestVertexRaw_Layout(t *testing.T) {
	raw := VertexRaw{
		Position:    [3]float32{1, 2, 3},
		Normal:      [4]uint8{10, 11, 12, 13},
		Specular:    [4]uint8{0xAA, 0xBB, 0xCC, 0xDD}, // r g b a
		UV0:         [2]int16{-1, 2},
		UV1:         [2]int16{3, -4},
		BlendWeight: [4]uint8{20, 21, 22, 23},
	}
	got := encodeWith(t, func(w *writer) error {
		writeVertexRaw(w, raw)
		return nil
	})

	want := new(blob)
	want.f32(1, 2, 3)
	want.Write([]byte{10, 11, 12, 13})
	want.Write([]byte{0xCC, 0xBB, 0xAA, 0xDD}) // b g r a
	want.Write([]byte{0xFF, 0xFF, 0x02, 0x00, 0x03, 0x00, 0xFC, 0xFF})
	want.Write([]byte{20, 21, 22, 23})

	if len(got) != VertexRecordSize {
		t.Fatalf("record size = %d, want %d", len(got), VertexRecordSize)
	}
	if !bytes.Equal(got, want.Bytes()) {
		t.Errorf("layout mismatch\ngot:  % x\nwant: % x", got, want.Bytes())
	}

	back := readVertexRaw(newReader(got))
	if back != raw {
		t.Errorf("readVertexRaw = %+v, want %+v", back, raw)
	}
}

func TestQuantization_RawRoundTrip(t *testing.T) {
	q := DefaultQuantization()

	for i := 0; i <= math.MaxUint8; i++ {
		b := uint8(i)
		raw := VertexRaw{
			Position:    [3]float32{float32(i), -float32(i), 0.5},
			Normal:      [4]uint8{b, 255 - b, b / 2, 255},
			Specular:    [4]uint8{b, b / 3, 255 - b, b},
			BlendWeight: [4]uint8{255 - b, b, b / 5, b},
		}
		if got := q.BlendToRaw(q.RawToBlend(raw)); got != raw {
			t.Fatalf("byte %d: raw -> blend -> raw = %+v, want %+v", i, got, raw)
		}
	}

	for i := math.MinInt16; i <= math.MaxInt16; i += 7 {
		v := int16(i)
		raw := VertexRaw{
			Normal: [4]uint8{0, 0, 0, 255},
			UV0:    [2]int16{v, -v / 2},
			UV1:    [2]int16{v / 3, math.MaxInt16},
		}
		if got := q.BlendToRaw(q.RawToBlend(raw)); got != raw {
			t.Fatalf("int16 %d: raw -> blend -> raw = %+v, want %+v", i, got, raw)
		}
	}
}

func TestQuantization_Bound(t *testing.T) {
	q := DefaultQuantization()

	u8 := []struct {
		name string
		ch   Channel
	}{
		{"normal", q.Normal},
		{"specular", q.Specular},
		{"blendweight", q.BlendWeight},
	}
	for _, tt := range u8 {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.ch.RangeU8()
			step := tt.ch.Step()
			for i := 0; i <= 1000; i++ {
				v := lo + (hi-lo)*float32(i)/1000
				got := tt.ch.Dequantize(float64(tt.ch.QuantizeU8(v)))
				if d := math.Abs(float64(got - v)); d > step {
					t.Fatalf("v=%v: error %v exceeds step %v", v, d, step)
				}
			}
		})
	}

	t.Run("uv", func(t *testing.T) {
		lo, hi := q.UV.RangeI16()
		step := q.UV.Step()
		for i := 0; i <= 10000; i++ {
			v := lo + (hi-lo)*float32(i)/10000
			got := q.UV.Dequantize(float64(q.UV.QuantizeI16(v)))
			if d := math.Abs(float64(got - v)); d > step {
				t.Fatalf("v=%v: error %v exceeds step %v", v, d, step)
			}
		}
	})
}

func TestQuantization_Clamp(t *testing.T) {
	q := DefaultQuantization()

	if got := q.Specular.QuantizeU8(2); got != 255 {
		t.Errorf("QuantizeU8(2) = %d, want 255", got)
	}
	if got := q.Specular.QuantizeU8(-1); got != 0 {
		t.Errorf("QuantizeU8(-1) = %d, want 0", got)
	}
	if got := q.UV.QuantizeI16(1000); got != math.MaxInt16 {
		t.Errorf("QuantizeI16(1000) = %d, want %d", got, math.MaxInt16)
	}
	if got := q.UV.QuantizeI16(-1000); got != math.MinInt16 {
		t.Errorf("QuantizeI16(-1000) = %d, want %d", got, math.MinInt16)
	}
	if got := q.Normal.QuantizeU8(float32(math.NaN())); got != 128 {
		t.Errorf("QuantizeU8(NaN) = %d, want 128", got)
	}
}

func TestRawToBlend_NormalSentinel(t *testing.T) {
	q := DefaultQuantization()
	b := q.RawToBlend(VertexRaw{Normal: [4]uint8{255, 0, 128, 7}})
	if b.Normal[3] != 1.0 {
		t.Errorf("normal w = %v, want 1.0", b.Normal[3])
	}
	if b.Normal[0] != 1 || b.Normal[1] != -1 {
		t.Errorf("normal x,y = %v,%v, want 1,-1", b.Normal[0], b.Normal[1])
	}
}

func TestBlendToRaw_PositionPassthrough(t *testing.T) {
	q := DefaultQuantization()
	pos := [3]float32{123.456, -0.001, float32(math.MaxFloat32)}
	if got := q.BlendToRaw(VertexBlend{Position: pos}).Position; got != pos {
		t.Errorf("position = %v, want %v", got, pos)
	}
}

func TestQuantization_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(q *Quantization)
		wantErr bool
	}{
		{"default", func(q *Quantization) {}, false},
		{"zero scale", func(q *Quantization) { q.Normal.Scale = 0 }, true},
		{"negative scale", func(q *Quantization) { q.UV.Scale = -1 }, true},
		{"infinite scale", func(q *Quantization) { q.Specular.Scale = math.Inf(1) }, true},
		{"bias above byte", func(q *Quantization) { q.BlendWeight.Bias = 300 }, true},
		{"negative byte bias", func(q *Quantization) { q.Specular.Bias = -1 }, true},
		{"negative uv bias", func(q *Quantization) { q.UV.Bias = -100 }, false},
		{"nan bias", func(q *Quantization) { q.UV.Bias = math.NaN() }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := DefaultQuantization()
			tt.modify(&q)
			if err := q.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuantization_Verify(t *testing.T) {
	q := DefaultQuantization()
	raw := VertexRaw{Normal: [4]uint8{1, 2, 3, 4}, Specular: [4]uint8{5, 6, 7, 8}, UV0: [2]int16{100, -100}}
	if bad := q.Verify(raw); len(bad) != 0 {
		t.Errorf("default quantization reported mismatches %v", bad)
	}

	// Blend values overflow float32 and clamp on the way back.
	tiny := q
	tiny.Specular = Channel{Scale: 1e-300, Bias: 0}
	bad := tiny.Verify(raw)
	if len(bad) != 4 {
		t.Fatalf("expected 4 specular mismatches, got %v", bad)
	}
	for _, name := range bad {
		if name[:8] != "specular" {
			t.Errorf("unexpected mismatch %q", name)
		}
	}
}

func TestVertexMap_InsertionOrder(t *testing.T) {
	m := NewVertexMap(4)
	for _, idx := range []uint16{7, 2, 9, 2, 0, 7} {
		m.Add(Vertex{Index: idx})
	}

	want := []uint16{7, 2, 9, 0}
	got := m.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if m.Len() != 4 {
		t.Errorf("Len() = %d, want 4", m.Len())
	}
	if !m.Has(9) || m.Has(3) {
		t.Error("Has() returned wrong membership")
	}
	if v, ok := m.Get(9); !ok || v.Index != 9 {
		t.Errorf("Get(9) = %+v, %v", v, ok)
	}
	if m.Add(Vertex{Index: 7}) {
		t.Error("Add() of existing index should report false")
	}

	var empty *VertexMap
	if empty.Len() != 0 || empty.Keys() != nil || empty.Vertices() != nil {
		t.Error("nil map should be empty")
	}
}
