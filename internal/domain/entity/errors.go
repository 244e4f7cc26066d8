package entity

import "errors"

var (
	ErrNoReference            = errors.New("at least one before image is required")
	ErrNoCandidates           = errors.New("at least one after image is required")
	ErrEmptyImage             = errors.New("empty image")
	ErrVerificationIncomplete = errors.New("verification incomplete: no region was evaluated")
	ErrVisionDisabled         = errors.New("gocv build tag is not enabled")
)
