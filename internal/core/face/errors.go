package face

import "errors"

var (
	ErrNoFace            = errors.New("face: no face detected")
	ErrInvalidImage      = errors.New("face: invalid image")
	ErrDimensionMismatch = errors.New("face: descriptor dimension mismatch")
	ErrEmptyDescriptor   = errors.New("face: empty descriptor")
	ErrInvalidDescriptor = errors.New("face: invalid descriptor")
	ErrInvalidThreshold  = errors.New("face: invalid threshold")
)
