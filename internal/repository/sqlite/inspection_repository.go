package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"polyviz/internal/model"
)

// InspectionRepository implements repository.InspectionRepository for SQLite.
type InspectionRepository struct {
	db *DB
}

// NewInspectionRepository creates a new SQLite inspection repository.
func NewInspectionRepository(db *DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// StartRun inserts a run row and returns its ID.
func (r *InspectionRepository) StartRun(imageDir, labelDir string) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO runs (image_dir, label_dir, started_at)
		VALUES (?, ?, ?)
	`, imageDir, labelDir, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return result.LastInsertId()
}

// FinishRun stores the final counters of a run.
func (r *InspectionRepository) FinishRun(runID int64, summary model.Summary) error {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		UPDATE runs SET finished_at = ?, images = ?, presented = ?, missing_annotations = ?,
			image_failures = ?, polygons = ?, skipped_lines = ?
		WHERE id = ?
	`, time.Now().UTC(), summary.Images, summary.Presented, summary.MissingAnnotations,
		summary.ImageFailures, summary.Polygons, summary.SkippedLines, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %d not found", runID)
	}
	return nil
}

// RecordInspection adds a shown image to a run.
func (r *InspectionRepository) RecordInspection(runID int64, pair model.FilePair, polygons int) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO inspections (run_id, image_path, annotation_path, polygons, inspected_at)
		VALUES (?, ?, ?, ?, ?)
	`, runID, pair.ImagePath, pair.AnnotationPath, polygons, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert inspection: %w", err)
	}

	return result.LastInsertId()
}

// RecordDiagnostic adds a diagnostic to a run.
func (r *InspectionRepository) RecordDiagnostic(runID int64, d model.Diagnostic) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO diagnostics (run_id, kind, path, line, text, message)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, string(d.Kind), d.Path, d.Line, d.Text, d.Message)
	if err != nil {
		return fmt.Errorf("failed to insert diagnostic: %w", err)
	}
	return nil
}

// GetRun retrieves a run by its ID. It returns nil when the run does not exist.
func (r *InspectionRepository) GetRun(runID int64) (*model.Run, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var run model.Run
	var finished sql.NullTime
	err := r.db.Conn().QueryRow(`
		SELECT id, image_dir, label_dir, started_at, finished_at, images, presented,
			missing_annotations, image_failures, polygons, skipped_lines
		FROM runs WHERE id = ?
	`, runID).Scan(&run.ID, &run.ImageDir, &run.LabelDir, &run.StartedAt, &finished,
		&run.Summary.Images, &run.Summary.Presented, &run.Summary.MissingAnnotations,
		&run.Summary.ImageFailures, &run.Summary.Polygons, &run.Summary.SkippedLines)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}

// GetInspections returns the images shown in a run, in the order they were shown.
func (r *InspectionRepository) GetInspections(runID int64) ([]model.Inspection, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, run_id, image_path, annotation_path, polygons, inspected_at
		FROM inspections WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inspections: %w", err)
	}
	defer rows.Close()

	var inspections []model.Inspection
	for rows.Next() {
		var in model.Inspection
		if err := rows.Scan(&in.ID, &in.RunID, &in.ImagePath, &in.AnnotationPath, &in.Polygons, &in.InspectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}
		inspections = append(inspections, in)
	}

	return inspections, rows.Err()
}

// GetDiagnostics returns the diagnostics of a run in report order.
func (r *InspectionRepository) GetDiagnostics(runID int64) ([]model.Diagnostic, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT kind, path, line, text, message
		FROM diagnostics WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}
	defer rows.Close()

	var diagnostics []model.Diagnostic
	for rows.Next() {
		var d model.Diagnostic
		var kind string
		if err := rows.Scan(&kind, &d.Path, &d.Line, &d.Text, &d.Message); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		d.Kind = model.DiagnosticKind(kind)
		diagnostics = append(diagnostics, d)
	}

	return diagnostics, rows.Err()
}
