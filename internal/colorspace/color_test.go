package colorspace

import "testing"

func TestRotated(t *testing.T) {
	tests := []struct {
		hue    float64
		offset float64
		want   float64
	}{
		{0, 180, 180},
		{180, 180, 0},
		{0, -20, 340},
		{350, 20, 10},
		{0, 380, 20},
	}

	for _, tt := range tests {
		got := New(tt.hue).Rotated(tt.offset)
		if got.Hue != tt.want {
			t.Errorf("New(%v).Rotated(%v) = %v, want %v", tt.hue, tt.offset, got.Hue, tt.want)
		}
	}
}

func TestAngleTo(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 180, 180},
		{0, 20, 20},
		{0, 340, 20},
		{10, 350, 20},
		{90, 90, 0},
	}

	for _, tt := range tests {
		if got := New(tt.a).AngleTo(New(tt.b)); got != tt.want {
			t.Errorf("AngleTo(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
