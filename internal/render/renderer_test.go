package render

import (
	"image"
	"testing"

	"polyviz/internal/model"

	"gocv.io/x/gocv"
)

func newBlank(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3)
}

// bgrAt returns the blue, green and red bytes at (x, y).
func bgrAt(m gocv.Mat, x, y int) [3]uint8 {
	v := m.GetVecbAt(y, x)
	return [3]uint8{v[0], v[1], v[2]}
}

func TestRender_DrawsClosedOutline(t *testing.T) {
	img := newBlank(200, 200)
	defer img.Close()

	records := []model.AnnotationRecord{{
		ClassID: 2,
		Points:  []image.Point{{20, 20}, {100, 20}, {100, 100}, {20, 100}},
	}}

	if err := NewRenderer().Render(&img, records); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	green := [3]uint8{0, 255, 0}
	tests := []struct {
		name string
		x, y int
	}{
		{"right edge", 100, 60},
		{"bottom edge", 60, 100},
		{"closing edge", 20, 60},
	}
	for _, tt := range tests {
		if got := bgrAt(img, tt.x, tt.y); got != green {
			t.Errorf("%s: expected green at (%d,%d), got %v", tt.name, tt.x, tt.y, got)
		}
	}

	if got := bgrAt(img, 60, 60); got != [3]uint8{0, 0, 0} {
		t.Errorf("Expected interior untouched, got %v", got)
	}
	if got := bgrAt(img, 150, 150); got != [3]uint8{0, 0, 0} {
		t.Errorf("Expected outside untouched, got %v", got)
	}
}

func TestRender_DrawsLabelAtFirstVertex(t *testing.T) {
	img := newBlank(200, 200)
	defer img.Close()

	records := []model.AnnotationRecord{{
		ClassID: 7,
		Points:  []image.Point{{40, 150}, {190, 150}, {190, 190}},
	}}

	if err := NewRenderer().Render(&img, records); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	blue := [3]uint8{255, 0, 0}
	found := false
	for y := 135; y <= 150 && !found; y++ {
		for x := 40; x < 120; x++ {
			if bgrAt(img, x, y) == blue {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("Expected label pixels above the first vertex")
	}

	if got := bgrAt(img, 40, 40); got != [3]uint8{0, 0, 0} {
		t.Errorf("Expected no drawing far from polygon, got %v", got)
	}
}

func TestRender_NoRecords(t *testing.T) {
	img := newBlank(10, 10)
	defer img.Close()

	if err := NewRenderer().Render(&img, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	flat := img.Reshape(1, 0)
	defer flat.Close()
	if n := gocv.CountNonZero(flat); n != 0 {
		t.Errorf("Expected untouched image, got %d non-zero values", n)
	}
}

func TestLabel(t *testing.T) {
	if got := Label(3); got != "Class 3" {
		t.Errorf("Expected 'Class 3', got %q", got)
	}
}
