package protocol

import "errors"

var (
	ErrUnknownKind  = errors.New("unknown message kind")
	ErrFieldTooLong = errors.New("text field exceeds maximum length")
)
