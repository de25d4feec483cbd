package service

import "errors"

var (
	ErrNotFound     = errors.New("contrato not found")
	ErrInvalidInput = errors.New("invalid input")
)
