package apperror

import "errors"

var (
	ErrInvalidIndex = errors.New("move index is out of range")
	ErrInvalidCell  = errors.New("invalid cell index")
	ErrUnknownStore = errors.New("unknown session store")
)
