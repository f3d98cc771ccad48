package relay

import "errors"

var (
	ErrJoinRequired  = errors.New("first frame was not JoinRoom")
	ErrAlreadyJoined = errors.New("JoinRoom received twice on one connection")
)
