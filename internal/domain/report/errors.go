package report

import "errors"

var (
	ErrUnknownFilter = errors.New("unknown report filter")
	ErrUnknownFormat = errors.New("unknown report format")
)
