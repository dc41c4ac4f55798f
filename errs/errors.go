// Package errs defines the sentinel errors shared across pspart packages.
//
// Fatal search failures are distinct named values so callers can separate
// input-validation problems from "the model is too irregular for the
// configured pattern budget" (ErrTooManyPatterns).
package errs

import "errors"

var (
	// ErrDimensionMismatch indicates that the starting points and the domain
	// bounds do not agree on the parameter space dimensionality.
	ErrDimensionMismatch = errors.New("dimension mismatch between starting points and bounds")

	// ErrInvalidBounds indicates that some dimension has min > max.
	ErrInvalidBounds = errors.New("invalid bounds: min exceeds max")

	// ErrNoStartingPoints indicates that no starting points were supplied.
	ErrNoStartingPoints = errors.New("no starting points supplied")

	// ErrStartOutOfBounds indicates a starting point outside the domain bounds.
	ErrStartOutOfBounds = errors.New("starting point outside bounds")

	// ErrMaxPatternsRequired indicates that the mandatory pattern budget
	// option was not provided.
	ErrMaxPatternsRequired = errors.New("max patterns option is required")

	// ErrTooManyPatterns indicates the search discovered more distinct
	// patterns than the configured budget allows. The run is aborted with no
	// partial result.
	ErrTooManyPatterns = errors.New("too many patterns")

	// ErrInvalidOption indicates an option value outside its valid range.
	ErrInvalidOption = errors.New("invalid option value")

	// ErrInvalidMagic indicates that snapshot data does not start with the
	// pspart snapshot magic number.
	ErrInvalidMagic = errors.New("invalid snapshot magic")

	// ErrUnsupportedVersion indicates a snapshot produced by a newer format
	// revision than this package understands.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")

	// ErrChecksumMismatch indicates snapshot payload corruption.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// ErrTruncatedSnapshot indicates snapshot data shorter than its header
	// and index claim.
	ErrTruncatedSnapshot = errors.New("truncated snapshot data")
)
