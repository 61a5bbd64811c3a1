// Package walker pairs images with their YOLO polygon annotations and shows
// each annotated image in turn.
package walker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"polyviz/internal/annotation"
	"polyviz/internal/config"
	"polyviz/internal/logger"
	"polyviz/internal/model"
	"polyviz/internal/present"
	"polyviz/internal/report"

	"gocv.io/x/gocv"
)

// Run-level failures. Run reports them and returns before touching any image.
var (
	ErrImageDirMissing = errors.New("image directory does not exist")
	ErrLabelDirMissing = errors.New("label directory does not exist")
	ErrNoImages        = errors.New("no image files found")
)

// AnnotationExt is appended to an image stem to find its label file.
const AnnotationExt = ".txt"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Renderer draws annotation records onto an image in place.
type Renderer interface {
	Render(img *gocv.Mat, records []model.AnnotationRecord) error
}

// Recorder is told about every image that was shown to the user.
type Recorder interface {
	RecordInspection(pair model.FilePair, polygons int)
}

type Walker struct {
	imageDir  string
	labelDir  string
	renderer  Renderer
	presenter present.Presenter
	reporter  report.Reporter
	recorder  Recorder
	logger    *logger.Logger
}

func New(cfg *config.Config, renderer Renderer, presenter present.Presenter, reporter report.Reporter, logger *logger.Logger) *Walker {
	if reporter == nil {
		reporter = report.Discard
	}
	return &Walker{
		imageDir:  cfg.ImageDir,
		labelDir:  cfg.LabelDir,
		renderer:  renderer,
		presenter: presenter,
		reporter:  reporter,
		logger:    logger,
	}
}

// WithRecorder sets the Recorder notified after each presented image.
func (w *Walker) WithRecorder(r Recorder) *Walker {
	w.recorder = r
	return w
}

// Run checks both directories, then visualizes every image that has an
// annotation file, one at a time. Missing annotations, unreadable images and
// malformed lines are reported and skipped. Run stops early when the viewer
// quits (returning nil) or ctx is done (returning ctx.Err()).
func (w *Walker) Run(ctx context.Context) (model.Summary, error) {
	var summary model.Summary

	if !isDir(w.imageDir) {
		w.report(model.KindImageDirMissing, w.imageDir, "image directory does not exist")
		return summary, ErrImageDirMissing
	}
	if !isDir(w.labelDir) {
		w.report(model.KindLabelDirMissing, w.labelDir, "label directory does not exist")
		return summary, ErrLabelDirMissing
	}

	names, err := Discover(w.imageDir)
	if err != nil {
		return summary, err
	}
	if len(names) == 0 {
		w.report(model.KindNoImages, w.imageDir, "no image files found")
		return summary, ErrNoImages
	}

	w.logger.Info("Found %d images in %s", len(names), w.imageDir)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Images++
		pair := Pair(w.imageDir, w.labelDir, name)

		if _, err := os.Stat(pair.AnnotationPath); err != nil {
			if os.IsNotExist(err) {
				summary.MissingAnnotations++
				w.report(model.KindMissingAnnotation, pair.ImagePath, "no annotation file "+filepath.Base(pair.AnnotationPath))
			} else {
				w.report(model.KindAnnotationReadFailed, pair.AnnotationPath, err.Error())
			}
			continue
		}

		err := w.visualize(ctx, pair, &summary)
		switch {
		case err == nil:
		case errors.Is(err, present.ErrQuit):
			w.logger.Info("Viewer quit after %d of %d images", summary.Presented, len(names))
			return summary, nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return summary, err
		default:
			w.logger.Error("Failed to present %s: %v", pair.ImagePath, err)
		}
	}

	return summary, nil
}

// visualize loads, annotates and presents a single pair. Problems local to
// the pair are reported and swallowed; only presenter errors are returned.
func (w *Walker) visualize(ctx context.Context, pair model.FilePair, summary *model.Summary) error {
	img, err := LoadImage(pair.ImagePath)
	if err != nil {
		summary.ImageFailures++
		w.report(model.KindImageLoadFailed, pair.ImagePath, err.Error())
		return nil
	}
	defer img.Close()

	counting := report.Func(func(d model.Diagnostic) {
		if d.Kind == model.KindMalformedLine {
			summary.SkippedLines++
		}
		w.reporter.Report(d)
	})

	records, err := annotation.Parse(pair.AnnotationPath, img.Cols(), img.Rows(), counting)
	if err != nil {
		w.report(model.KindAnnotationReadFailed, pair.AnnotationPath, err.Error())
		return nil
	}

	w.logger.Info("Visualizing %s with annotation %s (%d polygons)",
		filepath.Base(pair.ImagePath), filepath.Base(pair.AnnotationPath), len(records))

	if err := w.renderer.Render(&img, records); err != nil {
		w.report(model.KindRenderFailed, pair.ImagePath, err.Error())
		return nil
	}
	summary.Polygons += len(records)

	if err := w.presenter.Present(ctx, filepath.Base(pair.ImagePath), img); err != nil {
		return err
	}
	summary.Presented++

	if w.recorder != nil {
		w.recorder.RecordInspection(pair, len(records))
	}
	return nil
}

func (w *Walker) report(kind model.DiagnosticKind, path, message string) {
	w.reporter.Report(model.Diagnostic{Kind: kind, Path: path, Message: message})
}

// Discover lists the regular files in dir with a recognized image extension
// (case-insensitive), sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// IsImageFile reports whether name ends in .jpg, .jpeg or .png in any case.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Pair builds the file pair for an image name: the annotation shares the
// image stem and lives directly in labelDir.
func Pair(imageDir, labelDir, imageName string) model.FilePair {
	stem := strings.TrimSuffix(imageName, filepath.Ext(imageName))
	return model.FilePair{
		ImagePath:      filepath.Join(imageDir, imageName),
		AnnotationPath: filepath.Join(labelDir, stem+AnnotationExt),
	}
}

// LoadImage decodes the image at path as 8-bit BGR.
func LoadImage(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("could not load image %s", path)
	}
	return img, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
