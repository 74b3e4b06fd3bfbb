// Package errors defines the sentinel error values shared across the module.
//
// Callers match on these with errors.Is; call sites attach context by wrapping
// with fmt.Errorf("...: %w", ...). The public package re-exports them so that
// importers never need to reach into internal packages.
package errors

import (
	"errors"
)

var (
	// ErrConfiguration is returned when the network collection location is
	// unset, or set to a directory that fails its marker-file check.
	ErrConfiguration = errors.New("network collection location is not configured")

	// ErrNotFound is returned when a named source, subnetwork, or partition
	// file does not exist at resolution or construction time.
	ErrNotFound = errors.New("not found")

	// ErrSchema is returned when a constituent's columns do not match the
	// contracted prefix regulator, target, weight, and optionally cell_type.
	ErrSchema = errors.New("column schema mismatch")

	// ErrInvalidArgument is returned for bad caller input: an unqueryable
	// field name, missing construction inputs, or an unrecognized save path.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrValidation is returned when a network fails an integrity check,
	// such as carrying more distinct regulators than targets.
	ErrValidation = errors.New("network validation failed")
)
