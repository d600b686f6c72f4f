package spritekit

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translate", Translate(10, -5), Pt(1, 1), Pt(11, -4)},
		{"scale", Scale(2, 3), Pt(1, 1), Pt(2, 3)},
		{"rotate 90", Rotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"scale then translate", Translate(1, 1).Multiply(Scale(2, 2)), Pt(1, 1), Pt(3, 3)},
		{"ortho origin", Ortho(800, 600), Pt(0, 0), Pt(-1, 1)},
		{"ortho corner", Ortho(800, 600), Pt(800, 600), Pt(1, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(5, 7).Multiply(Rotate(0.3)).Multiply(Scale(2, 0.5))
	p := Pt(12, -3)
	back := m.Invert().TransformPoint(m.TransformPoint(p))
	if !near(back.X, p.X) || !near(back.Y, p.Y) {
		t.Errorf("Invert round trip = %v, want %v", back, p)
	}

	if !Scale(0, 0).Invert().IsIdentity() {
		t.Error("Invert of singular matrix should be identity")
	}
}

func TestMatrixMat3(t *testing.T) {
	m := Translate(3, 4)
	got := m.Mat3()
	want := [12]float32{1, 0, 0, 0, 0, 1, 0, 0, 3, 4, 1, 0}
	if got != want {
		t.Errorf("Mat3() = %v, want %v", got, want)
	}
}
