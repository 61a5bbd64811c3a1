package model

import "fmt"

// DiagnosticKind classifies a reported problem.
type DiagnosticKind string

const (
	KindMalformedLine        DiagnosticKind = "malformed_line"
	KindMissingAnnotation    DiagnosticKind = "missing_annotation"
	KindImageLoadFailed      DiagnosticKind = "image_load_failed"
	KindAnnotationReadFailed DiagnosticKind = "annotation_read_failed"
	KindRenderFailed         DiagnosticKind = "render_failed"
	KindImageDirMissing      DiagnosticKind = "image_dir_missing"
	KindLabelDirMissing      DiagnosticKind = "label_dir_missing"
	KindNoImages             DiagnosticKind = "no_images"
)

// Diagnostic describes a recoverable or run-level problem found while walking
// a dataset. Line is 1-based and only set for malformed annotation lines.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Path    string         `json:"path"`
	Line    int            `json:"line,omitempty"`
	Text    string         `json:"text,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s: %s:%d: %s: %q", d.Kind, d.Path, d.Line, d.Message, d.Text)
	}
	return fmt.Sprintf("%s: %s: %s", d.Kind, d.Path, d.Message)
}
