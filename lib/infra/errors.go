package infra

import "errors"

// Sentinel errors shared by the container packages.
// Callers branch with errors.Is instead of matching strings.
var (
	ErrKeyNotFound      = errors.New("[assoc] key not found")
	ErrEmptyContainer   = errors.New("[assoc] empty container")
	ErrCapacityOverflow = errors.New("[assoc] capacity overflow")
)
