package protocol

import "errors"

var (
	ErrContentTooLong = errors.New("protocol: content too long")
	ErrInvalidText    = errors.New("protocol: content is not valid utf-8")
)
