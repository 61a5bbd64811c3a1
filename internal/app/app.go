package app

import (
	"context"
	"errors"
	"fmt"

	"polyviz/internal/config"
	"polyviz/internal/logger"
	"polyviz/internal/model"
	"polyviz/internal/present"
	"polyviz/internal/render"
	"polyviz/internal/report"
	"polyviz/internal/repository"
	"polyviz/internal/repository/sqlite"
	"polyviz/internal/walker"
)

// WindowName is the title of the native viewer window.
const WindowName = "polyviz"

type App struct {
	config    *config.Config
	logger    *logger.Logger
	presenter present.Presenter
	db        *sqlite.DB
	repo      repository.InspectionRepository
}

// NewApp wires logger, presenter and the optional inspection log from cfg.
func NewApp(cfg *config.Config) (*App, error) {
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{config: cfg, logger: log}

	switch cfg.Viewer {
	case config.ViewerWeb:
		web := present.NewWebPresenter(cfg.WebAddr, log)
		if err := web.Start(); err != nil {
			log.Close()
			return nil, err
		}
		a.presenter = web
	default:
		a.presenter = present.NewWindowPresenter(WindowName, log)
	}

	if cfg.ReportDB != "" {
		db, err := sqlite.New(cfg.ReportDB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open inspection log: %w", err)
		}
		a.db = db
		a.repo = sqlite.NewInspectionRepository(db)
	}

	return a, nil
}

// newWithPresenter builds an App around an existing presenter and repository.
func newWithPresenter(cfg *config.Config, log *logger.Logger, p present.Presenter, repo repository.InspectionRepository) *App {
	return &App{config: cfg, logger: log, presenter: p, repo: repo}
}

// Run walks the configured dataset. Run-level problems such as a missing
// directory are reported and end the run without an error, as does an
// interrupt.
func (a *App) Run(ctx context.Context) error {
	var reporter report.Reporter = report.NewLogReporter(a.logger)
	var recorder walker.Recorder

	var runID int64
	if a.repo != nil {
		id, err := a.repo.StartRun(a.config.ImageDir, a.config.LabelDir)
		if err != nil {
			return err
		}
		runID = id
		reporter = report.Multi(reporter, report.NewStoreReporter(a.repo, runID, a.logger))
		recorder = &runRecorder{repo: a.repo, runID: runID, logger: a.logger}
	}

	w := walker.New(a.config, render.NewRenderer(), a.presenter, reporter, a.logger)
	if recorder != nil {
		w.WithRecorder(recorder)
	}

	summary, err := w.Run(ctx)

	if a.repo != nil {
		if ferr := a.repo.FinishRun(runID, summary); ferr != nil {
			a.logger.Error("Failed to finish inspection run %d: %v", runID, ferr)
		}
	}

	switch {
	case err == nil:
		a.logger.Info("Done: %d images, %d shown, %d without annotation, %d failed to load, %d polygons, %d lines skipped",
			summary.Images, summary.Presented, summary.MissingAnnotations, summary.ImageFailures, summary.Polygons, summary.SkippedLines)
		return nil
	case errors.Is(err, walker.ErrImageDirMissing), errors.Is(err, walker.ErrLabelDirMissing), errors.Is(err, walker.ErrNoImages):
		return nil
	case errors.Is(err, context.Canceled):
		a.logger.Info("Interrupted after %d images", summary.Presented)
		return nil
	default:
		return err
	}
}

// Close releases the presenter, the inspection log and the logger.
func (a *App) Close() {
	if a.presenter != nil {
		if err := a.presenter.Close(); err != nil {
			a.logger.Warning("Failed to close viewer: %v", err)
		}
		a.presenter = nil
	}
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	a.logger.Close()
}

// runRecorder stores shown images in the inspection log.
type runRecorder struct {
	repo   repository.InspectionRepository
	runID  int64
	logger *logger.Logger
}

func (r *runRecorder) RecordInspection(pair model.FilePair, polygons int) {
	if _, err := r.repo.RecordInspection(r.runID, pair, polygons); err != nil {
		r.logger.Error("Failed to record inspection of %s: %v", pair.ImagePath, err)
	}
}
