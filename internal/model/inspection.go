package model

import "time"

// Run represents one walk over an image/label directory pair.
type Run struct {
	ID         int64      `json:"id"`
	ImageDir   string     `json:"imageDir"`
	LabelDir   string     `json:"labelDir"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Summary    Summary    `json:"summary"`
}

// Inspection records that an annotated image was shown during a run.
type Inspection struct {
	ID             int64     `json:"id"`
	RunID          int64     `json:"runId"`
	ImagePath      string    `json:"imagePath"`
	AnnotationPath string    `json:"annotationPath"`
	Polygons       int       `json:"polygons"`
	InspectedAt    time.Time `json:"inspectedAt"`
}
