package render

import (
	"fmt"
	"image"
	"image/color"

	"polyviz/internal/model"

	"gocv.io/x/gocv"
)

const (
	// OutlineThickness is the polygon stroke width in pixels.
	OutlineThickness = 2
	// LabelScale is the Hershey font scale used for class labels.
	LabelScale = 0.5
	// LabelThickness is the stroke width of label glyphs.
	LabelThickness = 1
)

var (
	OutlineColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	LabelColor   = color.RGBA{R: 0, G: 0, B: 255, A: 0}
)

// Renderer burns annotation polygons and their class labels into an image.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render draws every record onto img in place: a closed outline through its
// points and a "Class <id>" label anchored at the first vertex.
func (r *Renderer) Render(img *gocv.Mat, records []model.AnnotationRecord) error {
	for i, record := range records {
		if len(record.Points) == 0 {
			continue
		}

		if err := drawPolygon(img, record.Points); err != nil {
			return fmt.Errorf("failed to draw polygon %d: %w", i, err)
		}

		if err := gocv.PutText(img, Label(record.ClassID), record.Points[0], gocv.FontHersheySimplex, LabelScale, LabelColor, LabelThickness); err != nil {
			return fmt.Errorf("failed to draw label %d: %w", i, err)
		}
	}

	return nil
}

// Label returns the text drawn next to a polygon of the given class.
func Label(classID int) string {
	return fmt.Sprintf("Class %d", classID)
}

func drawPolygon(img *gocv.Mat, points []image.Point) error {
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{points})
	defer pv.Close()

	return gocv.Polylines(img, pv, true, OutlineColor, OutlineThickness)
}
