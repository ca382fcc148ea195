package domain

import "errors"

var (
	// ErrSourceUnavailable marks a failed external fetch. Callers treat it as retryable.
	ErrSourceUnavailable = errors.New("external data source unavailable")
	// ErrRecordTransform marks a single country that could not be transformed.
	ErrRecordTransform = errors.New("country record transform failed")
	// ErrStorage marks a fault inside the refresh transaction.
	ErrStorage = errors.New("storage failure")
)
