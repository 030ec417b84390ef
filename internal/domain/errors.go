package domain

import "errors"

// Fatal, pre-run error classes. Both abort before any probe is dispatched.
var (
	ErrConfiguration = errors.New("invalid configuration")
	ErrInput         = errors.New("invalid input")
)
