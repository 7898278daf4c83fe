package bsp

import "errors"

var (
	ErrNilCompute      = errors.New("compute function is required")
	ErrNilDefaultValue = errors.New("default value function is required")
)
