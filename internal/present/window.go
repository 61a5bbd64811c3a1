package present

import (
	"context"

	"polyviz/internal/logger"

	"gocv.io/x/gocv"
)

const (
	keyEsc = 27
	keyQ   = 'q'

	pollInterval = 100 // ms
)

// WindowPresenter shows images in a native OpenCV window. Any key or closing
// the window moves on; q or Esc quits the run.
type WindowPresenter struct {
	name   string
	window *gocv.Window
	logger *logger.Logger
}

func NewWindowPresenter(name string, logger *logger.Logger) *WindowPresenter {
	return &WindowPresenter{name: name, logger: logger}
}

func (p *WindowPresenter) Present(ctx context.Context, title string, img gocv.Mat) error {
	if p.window == nil {
		p.window = gocv.NewWindow(p.name)
	}

	p.window.SetWindowTitle(title)
	p.window.IMShow(img)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		key := p.window.WaitKey(pollInterval)
		if key >= 0 {
			switch key & 0xFF {
			case keyQ, keyEsc:
				return ErrQuit
			default:
				return nil
			}
		}

		if p.window.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
			p.logger.Info("Window closed for %s", title)
			p.window.Close()
			p.window = nil
			return nil
		}
	}
}

func (p *WindowPresenter) Close() error {
	if p.window == nil {
		return nil
	}
	err := p.window.Close()
	p.window = nil
	return err
}
