package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrBackpressure      = errors.New("trial queue full")
	ErrInvalidExperiment = errors.New("invalid experiment")
)
