package protocol

import "errors"

var (
	ErrShortHeader   = errors.New("protocol: short task header")
	ErrMetaTooLarge  = errors.New("protocol: meta larger than envelope meta storage")
	ErrTaskTooLarge  = errors.New("protocol: task larger than task storage")
	ErrInvalidLimits = errors.New("protocol: invalid task limits")
)
