package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestLumaGrayIdentity(t *testing.T) {
	// For R=G=B=v the weights sum to 1, so reduction must return v exactly.
	for v := 0; v <= 255; v++ {
		got := Luma(uint8(v), uint8(v), uint8(v))
		if got != uint8(v) {
			t.Errorf("Luma(%d,%d,%d) = %d, want %d", v, v, v, got, v)
		}
	}
}

func TestLumaWeights(t *testing.T) {
	cases := []struct {
		r, g, b uint8
		want    uint8
	}{
		{255, 0, 0, 76},  // round(0.299*255)
		{0, 255, 0, 150}, // round(0.587*255)
		{0, 0, 255, 29},  // round(0.114*255)
		{255, 255, 255, 255},
		{0, 0, 0, 0},
	}
	for _, c := range cases {
		if got := Luma(c.r, c.g, c.b); got != c.want {
			t.Errorf("Luma(%d,%d,%d) = %d, want %d", c.r, c.g, c.b, got, c.want)
		}
	}
}

func TestReduceDimensionsAndValues(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(2, 1, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	frame := Reduce(img)
	if frame.Width != 4 || frame.Height != 3 {
		t.Fatalf("frame is %dx%d, want 4x3", frame.Width, frame.Height)
	}
	if frame.At(2, 1) != 200 {
		t.Errorf("At(2,1) = %d, want 200", frame.At(2, 1))
	}
	if frame.At(0, 0) != 0 {
		t.Errorf("At(0,0) = %d, want 0", frame.At(0, 0))
	}
}

func TestReduceRawMalformed(t *testing.T) {
	if _, err := ReduceRaw(make([]uint8, 12), 0, 3); err == nil {
		t.Error("expected error for non-positive width")
	}
	if _, err := ReduceRaw(make([]uint8, 12), 2, -1); err == nil {
		t.Error("expected error for negative height")
	}
	if _, err := ReduceRaw(make([]uint8, 10), 2, 2); err == nil {
		t.Error("expected error for short buffer")
	}
	if _, err := ReduceRaw(make([]uint8, 16), 2, 2); err != nil {
		t.Errorf("unexpected error for well-formed buffer: %v", err)
	}
}

func TestReduceRawGray(t *testing.T) {
	buf := make([]uint8, 2*2*4)
	for p := 0; p < 4; p++ {
		buf[p*4], buf[p*4+1], buf[p*4+2], buf[p*4+3] = 90, 90, 90, 255
	}
	frame, err := ReduceRaw(buf, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range frame.Pixels {
		if v != 90 {
			t.Fatalf("got %d, want 90", v)
		}
	}
}
