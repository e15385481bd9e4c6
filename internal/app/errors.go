package service

import "errors"

// Service errors.
var (
	// ErrZeroTotalWeight means no scored row carried weight, so the final
	// score could not be normalized. The report is still returned.
	ErrZeroTotalWeight = errors.New("total weight of scored rows is zero")
	ErrNotStarted      = errors.New("service not started")
	ErrNoInputFiles    = errors.New("no input files")
)
