// Package annotation reads YOLO polygon label files.
//
// Each line holds one polygon: an integer class id followed by a flat list of
// normalized x,y coordinates in [0,1]. Lines that do not describe a closed
// polygon are skipped and reported; they never fail the whole file.
package annotation

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"polyviz/internal/model"
	"polyviz/internal/report"
)

const (
	// MinVertices is the smallest polygon accepted.
	MinVertices = 3

	maxLineSize = 16 * 1024 * 1024
)

// Parse reads the annotation file at path and converts every well-formed line
// to pixel space for an image of width x height. Only a failure to open or
// read the file is returned as an error.
func Parse(path string, width, height int, reporter report.Reporter) ([]model.AnnotationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation file: %w", err)
	}
	defer f.Close()

	return ParseReader(f, path, width, height, reporter)
}

// ParseReader is Parse for an arbitrary reader; name identifies the source in diagnostics.
func ParseReader(r io.Reader, name string, width, height int, reporter report.Reporter) ([]model.AnnotationRecord, error) {
	if reporter == nil {
		reporter = report.Discard
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []model.AnnotationRecord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		record, err := parseLine(line, width, height)
		if err != nil {
			reporter.Report(model.Diagnostic{
				Kind:    model.KindMalformedLine,
				Path:    name,
				Line:    lineNo,
				Text:    line,
				Message: err.Error(),
			})
			continue
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("failed to read annotation file %s: %w", name, err)
	}

	return records, nil
}

func parseLine(line string, width, height int) (model.AnnotationRecord, error) {
	tokens := strings.Fields(line)
	coords := tokens[1:]

	if len(coords)%2 != 0 {
		return model.AnnotationRecord{}, fmt.Errorf("odd number of coordinates (%d)", len(coords))
	}
	if len(coords) < MinVertices*2 {
		return model.AnnotationRecord{}, fmt.Errorf("need at least %d vertices, got %d", MinVertices, len(coords)/2)
	}

	classID, err := strconv.Atoi(tokens[0])
	if err != nil {
		return model.AnnotationRecord{}, fmt.Errorf("invalid class id %q", tokens[0])
	}

	points := make([]image.Point, 0, len(coords)/2)
	for i := 0; i < len(coords); i += 2 {
		x, err := strconv.ParseFloat(coords[i], 64)
		if err != nil {
			return model.AnnotationRecord{}, fmt.Errorf("invalid x coordinate %q", coords[i])
		}
		y, err := strconv.ParseFloat(coords[i+1], 64)
		if err != nil {
			return model.AnnotationRecord{}, fmt.Errorf("invalid y coordinate %q", coords[i+1])
		}
		points = append(points, image.Pt(Denormalize(x, width), Denormalize(y, height)))
	}

	return model.AnnotationRecord{ClassID: classID, Points: points}, nil
}

// Denormalize maps a normalized coordinate to a pixel index. It truncates
// toward zero; rounding would move vertices by one pixel.
func Denormalize(c float64, dimension int) int {
	return int(c * float64(dimension))
}
