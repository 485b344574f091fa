package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrRunInProgress is returned by RunOnce while another pass is active
	ErrRunInProgress = errors.New("daily sync pass already in progress")
)
