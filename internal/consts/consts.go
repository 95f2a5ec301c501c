package consts

import (
	"errors"
)

var (
	ErrNilReceiver       = errors.New(`nil receiver`)
	ErrNilParam          = errors.New(`nil parameter`)
	ErrNilImage          = errors.New(`nil image`)
	ErrCancelled         = errors.New(ReasonCancelled)
	ErrInvalidDimensions = errors.New(`invalid dimensions`)
	ErrInvalidScale      = errors.New(`invalid scale factor`)
	ErrAllocation        = errors.New(`destination buffer allocation failed`)
	ErrReleased          = errors.New(`pixel buffer ownership was transferred`)
	ErrBusy              = errors.New(`a job is already in flight`)
	ErrWorkerClosed      = errors.New(`worker closed`)
	ErrUnknownAlgorithm  = errors.New(`unknown algorithm`)
	ErrUnknownResizer    = errors.New(`unknown resizer`)
	ErrImageTooLarge     = errors.New(`image exceeds maximum side length`)
)

const (
	LibraryName = `upscaler`

	// ReasonCancelled is the error reason sent for a cooperative stop.
	ReasonCancelled = `cancelled`

	// MaxSide is the largest source width or height the host accepts.
	MaxSide = 4096

	// ProgressStep is the minimum advance in percent between two progress reports.
	ProgressStep = 5
)
