package crf

import (
	"fmt"
	"math"
)

// Channel maps a floating-point attribute onto an integer raw range:
//
//	raw   = clamp(round(v*Scale + Bias))
//	blend = (raw - Bias) / Scale
type Channel struct {
	Scale float64 `yaml:"scale" json:"scale" msgpack:"scale"`
	Bias  float64 `yaml:"bias" json:"bias" msgpack:"bias"`
}

// Step returns the blend-domain distance between two adjacent raw values.
func (c Channel) Step() float64 {
	return 1 / c.Scale
}

func (c Channel) quantize(v float32, lo, hi float64) float64 {
	x := math.Round(float64(v)*c.Scale + c.Bias)
	if math.IsNaN(x) {
		x = math.Round(c.Bias)
	}
	return math.Max(lo, math.Min(hi, x))
}

// QuantizeU8 converts v to an unsigned 8-bit raw value.
func (c Channel) QuantizeU8(v float32) uint8 {
	return uint8(c.quantize(v, 0, math.MaxUint8))
}

// QuantizeI16 converts v to a signed 16-bit raw value.
func (c Channel) QuantizeI16(v float32) int16 {
	return int16(c.quantize(v, math.MinInt16, math.MaxInt16))
}

// Dequantize converts a raw value back to the blend domain.
func (c Channel) Dequantize(raw float64) float32 {
	return float32((raw - c.Bias) / c.Scale)
}

// RangeU8 returns the blend-domain interval representable by an 8-bit channel.
func (c Channel) RangeU8() (lo, hi float32) {
	return c.Dequantize(0), c.Dequantize(math.MaxUint8)
}

// RangeI16 returns the blend-domain interval representable by a 16-bit channel.
func (c Channel) RangeI16() (lo, hi float32) {
	return c.Dequantize(math.MinInt16), c.Dequantize(math.MaxInt16)
}

func (c Channel) validate(name string, lo, hi float64) error {
	if !(c.Scale > 0) || math.IsInf(c.Scale, 0) {
		return fmt.Errorf("quantization %s: scale must be positive, got %v", name, c.Scale)
	}
	if math.IsNaN(c.Bias) || c.Bias < lo || c.Bias > hi {
		return fmt.Errorf("quantization %s: bias %v outside raw range [%v, %v]", name, c.Bias, lo, hi)
	}
	return nil
}

// Quantization is the set of per-attribute mappings between the blend and
// raw vertex domains. The exact constants used by the game are not known, so
// they are configurable and checked against sample files with Verify.
type Quantization struct {
	Normal      Channel `yaml:"normal" json:"normal" msgpack:"normal"`
	Specular    Channel `yaml:"specular" json:"specular" msgpack:"specular"`
	UV          Channel `yaml:"uv" json:"uv" msgpack:"uv"`
	BlendWeight Channel `yaml:"blendweight" json:"blendweight" msgpack:"blendweight"`
}

// DefaultQuantization maps normals from [-1, 1], colors and blend weights from
// [0, 1] onto the full byte range, and UVs onto int16 with 1/2048 precision.
func DefaultQuantization() Quantization {
	return Quantization{
		Normal:      Channel{Scale: 127.5, Bias: 127.5},
		Specular:    Channel{Scale: 255, Bias: 0},
		UV:          Channel{Scale: 2048, Bias: 0},
		BlendWeight: Channel{Scale: 255, Bias: 0},
	}
}

// Validate rejects mappings that cannot be inverted or whose zero point does
// not fit the raw width.
func (q Quantization) Validate() error {
	if err := q.Normal.validate("normal", 0, math.MaxUint8); err != nil {
		return err
	}
	if err := q.Specular.validate("specular", 0, math.MaxUint8); err != nil {
		return err
	}
	if err := q.UV.validate("uv", math.MinInt16, math.MaxInt16); err != nil {
		return err
	}
	return q.BlendWeight.validate("blendweight", 0, math.MaxUint8)
}

// Verify converts raw to the blend domain and back, and returns the names of
// the channels that did not reproduce their original value. The normal w
// channel is excluded because it decodes to a fixed sentinel.
func (q Quantization) Verify(raw VertexRaw) []string {
	back := q.BlendToRaw(q.RawToBlend(raw))

	var bad []string
	for i, name := range [3]string{"normal.x", "normal.y", "normal.z"} {
		if back.Normal[i] != raw.Normal[i] {
			bad = append(bad, name)
		}
	}
	for i, name := range [4]string{"specular.r", "specular.g", "specular.b", "specular.a"} {
		if back.Specular[i] != raw.Specular[i] {
			bad = append(bad, name)
		}
	}
	for i, name := range [2]string{"uv0.u", "uv0.v"} {
		if back.UV0[i] != raw.UV0[i] {
			bad = append(bad, name)
		}
	}
	for i, name := range [2]string{"uv1.u", "uv1.v"} {
		if back.UV1[i] != raw.UV1[i] {
			bad = append(bad, name)
		}
	}
	for i, name := range [4]string{"blendweight.x", "blendweight.y", "blendweight.z", "blendweight.w"} {
		if back.BlendWeight[i] != raw.BlendWeight[i] {
			bad = append(bad, name)
		}
	}
	return bad
}
