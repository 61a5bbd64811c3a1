// Package report delivers diagnostics found while walking a dataset to
// whoever is interested: the log, an in-memory list or the inspection log.
package report

import (
	"sync"

	"polyviz/internal/logger"
	"polyviz/internal/model"
)

// Reporter receives diagnostics. Implementations must not fail the caller.
type Reporter interface {
	Report(d model.Diagnostic)
}

// Func adapts a plain function to Reporter.
type Func func(d model.Diagnostic)

func (f Func) Report(d model.Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Reporter = Func(func(model.Diagnostic) {})

// LogReporter writes diagnostics as warnings.
type LogReporter struct {
	logger *logger.Logger
}

func NewLogReporter(logger *logger.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report logs malformed lines with their content and everything else by path.
func (r *LogReporter) Report(d model.Diagnostic) {
	switch d.Kind {
	case model.KindMalformedLine:
		r.logger.Warning("Skipping malformed polygon in %s:%d (%s): %s", d.Path, d.Line, d.Message, d.Text)
	case model.KindMissingAnnotation:
		r.logger.Warning("No annotation found for %s", d.Path)
	default:
		r.logger.Warning("%s: %s", d.Path, d.Message)
	}
}

// Collector keeps every diagnostic in memory.
type Collector struct {
	mu          sync.Mutex
	diagnostics []model.Diagnostic
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Report(d model.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, d)
}

// Diagnostics returns a copy of the collected diagnostics in report order.
func (c *Collector) Diagnostics() []model.Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// Count returns how many diagnostics of the given kind were collected.
func (c *Collector) Count(kind model.DiagnosticKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, d := range c.diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Multi forwards each diagnostic to all reporters in order. Nil entries are skipped.
func Multi(reporters ...Reporter) Reporter {
	return Func(func(d model.Diagnostic) {
		for _, r := range reporters {
			if r != nil {
				r.Report(d)
			}
		}
	})
}
