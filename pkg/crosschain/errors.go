package crosschain

import "errors"

var (
	ErrInvalidTransfer  = errors.New("invalid transfer input")
	ErrProofUnavailable = errors.New("merkle proof unavailable")
	ErrSubmissionFailed = errors.New("transaction submission failed")
	ErrUnsupportedMode  = errors.New("unsupported transfer mode")
)
