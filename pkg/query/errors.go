package query

import "errors"

var (
	// ErrEmptyDataset is returned when there is no data to operate on.
	ErrEmptyDataset = errors.New("dataset is empty")
	// ErrIncompleteData is returned when records lack a date and cannot be
	// ordered chronologically.
	ErrIncompleteData = errors.New("dataset has records without a date")
	// ErrMalformedCompoundInput is returned when two-field input does not
	// consist of exactly two non-empty lines.
	ErrMalformedCompoundInput = errors.New("expected exactly two non-empty lines")
	// ErrNoMatch is returned when a well-formed filter selects nothing.
	ErrNoMatch = errors.New("no records match the filter")
)
