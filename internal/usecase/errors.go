package usecase

import (
	"errors"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")

	// ErrStorageUnavailable aliases the domain sentinel so handlers can map
	// retryable store failures without importing infrastructure packages.
	ErrStorageUnavailable = matchbatch.ErrUnavailable
)
