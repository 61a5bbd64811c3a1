package report

import (
	"polyviz/internal/logger"
	"polyviz/internal/model"
)

// DiagnosticStore persists diagnostics for a run.
type DiagnosticStore interface {
	RecordDiagnostic(runID int64, d model.Diagnostic) error
}

// StoreReporter writes diagnostics of one run to a DiagnosticStore. Store
// failures are logged and otherwise ignored.
type StoreReporter struct {
	store  DiagnosticStore
	runID  int64
	logger *logger.Logger
}

func NewStoreReporter(store DiagnosticStore, runID int64, logger *logger.Logger) *StoreReporter {
	return &StoreReporter{store: store, runID: runID, logger: logger}
}

func (r *StoreReporter) Report(d model.Diagnostic) {
	if err := r.store.RecordDiagnostic(r.runID, d); err != nil {
		r.logger.Error("Failed to record diagnostic for %s: %v", d.Path, err)
	}
}
