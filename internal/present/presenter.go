// Package present shows annotated images to a person and waits until they
// are dismissed.
package present

import (
	"context"
	"errors"

	"gocv.io/x/gocv"
)

// ErrQuit is returned by Present when the viewer asks to stop the whole run.
var ErrQuit = errors.New("viewer requested quit")

// Presenter displays one image and blocks until it is dismissed, the viewer
// quits (ErrQuit) or ctx is done.
type Presenter interface {
	Present(ctx context.Context, title string, img gocv.Mat) error
	Close() error
}
