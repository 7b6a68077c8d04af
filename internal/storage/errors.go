package storage

import "errors"

// ErrPositionNotFound is returned when no tracked position matches the ID
var ErrPositionNotFound = errors.New("position not found")

// ErrDuplicatePosition is returned when adding a position whose ID is already tracked
var ErrDuplicatePosition = errors.New("position already tracked")
