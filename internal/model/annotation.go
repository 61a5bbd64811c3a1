package model

import "image"

// AnnotationRecord is one polygon instance parsed from a YOLO polygon line,
// already converted to pixel coordinates.
type AnnotationRecord struct {
	ClassID int
	Points  []image.Point
}

// FilePair links an image to the annotation file that shares its stem.
type FilePair struct {
	ImagePath      string
	AnnotationPath string
}

// Summary holds the counters of a single walker run.
type Summary struct {
	Images             int `json:"images"`
	Presented          int `json:"presented"`
	MissingAnnotations int `json:"missingAnnotations"`
	ImageFailures      int `json:"imageFailures"`
	Polygons           int `json:"polygons"`
	SkippedLines       int `json:"skippedLines"`
}
