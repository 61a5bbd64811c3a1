package repository

import (
	"polyviz/internal/model"
)

// InspectionRepository defines the interface for the inspection log.
type InspectionRepository interface {
	// Create operations
	StartRun(imageDir, labelDir string) (int64, error)
	RecordInspection(runID int64, pair model.FilePair, polygons int) (int64, error)
	RecordDiagnostic(runID int64, d model.Diagnostic) error

	// Update operations
	FinishRun(runID int64, summary model.Summary) error

	// Read operations
	GetRun(runID int64) (*model.Run, error)
	GetInspections(runID int64) ([]model.Inspection, error)
	GetDiagnostics(runID int64) ([]model.Diagnostic, error)
}
