package math

import (
	"math"
	"testing"
)

func TestVec3Length(t *testing.T) {
	v := Vec3{3, 4, 0}
	if got := v.Length(); got != 5 {
		t.Errorf("Vec3.Length() = %v, want 5", got)
	}
	if l := v.Normalize().Length(); l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, -1, -2}
	if got := a.Min(b); got != (Vec3{1, -1, -2}) {
		t.Errorf("Min() = %v", got)
	}
	if got := a.Max(b); got != (Vec3{3, 5, -2}) {
		t.Errorf("Max() = %v", got)
	}
	if got := V3(a.Sub(b).Array()); got != (Vec3{-2, 6, 0}) {
		t.Errorf("Sub() = %v", got)
	}
}

func TestBoxOf(t *testing.T) {
	tests := []struct {
		name   string
		points [][3]float32
		want   Box
	}{
		{"single", [][3]float32{{1, 2, 3}}, Box{Min: Vec3{1, 2, 3}, Max: Vec3{1, 2, 3}}},
		{
			"spread",
			[][3]float32{{0, 0, 0}, {-1, 4, 2}, {3, -2, 1}},
			Box{Min: Vec3{-1, -2, 0}, Max: Vec3{3, 4, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoxOf(tt.points); got != tt.want {
				t.Errorf("BoxOf() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if !BoxOf(nil).IsEmpty() {
		t.Error("BoxOf(nil) should be empty")
	}
}

func TestEmptyBox(t *testing.T) {
	b := EmptyBox()
	if !b.IsEmpty() {
		t.Error("EmptyBox should be empty")
	}
	if b.Size() != (Vec3{}) {
		t.Errorf("empty size = %v", b.Size())
	}
	if !math.IsInf(float64(b.Min.X), 1) {
		t.Errorf("Min.X = %v, want +Inf", b.Min.X)
	}

	b = b.Extend(Vec3{1, 1, 1}).Extend(Vec3{2, 3, 4})
	if b.IsEmpty() || b.Size() != (Vec3{1, 2, 3}) {
		t.Errorf("extended box = %+v", b)
	}
}
