package networks

import (
	"github.com/ekernf01/pereggrn-networks/internal/errors"
)

// Re-export sentinel errors so callers can match with errors.Is without
// importing internal packages.
var (
	// ErrConfiguration: collection location unset or failing its marker check.
	ErrConfiguration = errors.ErrConfiguration

	// ErrNotFound: a named source, subnetwork, or partition file is missing.
	ErrNotFound = errors.ErrNotFound

	// ErrSchema: a constituent's columns violate the contracted order.
	ErrSchema = errors.ErrSchema

	// ErrInvalidArgument: bad field name, missing construction inputs, or an
	// unrecognized save path.
	ErrInvalidArgument = errors.ErrInvalidArgument

	// ErrValidation: a network failed an integrity check.
	ErrValidation = errors.ErrValidation
)
