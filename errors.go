package simcore

import "fmt"

// Error message formats, grounded on the teacher's errors.go constants
// (IntKeyNotFoundError, InvalidIntParameterError, ...). Kept as format
// strings rather than typed errors so callers can still prefer
// fmt.Errorf/errors.Wrapf at the call site, matching the teacher's usage.
const (
	InvalidIntParameterError    = "invalid %s %d, %s"
	InvalidFloatParameterError  = "invalid %s %f, %s"
	InvalidStringParameterError = "invalid %s %s, %s"
	UnrecognizedKeywordError    = "%q is not a recognized value for %s"
	IntKeyNotFoundError         = "key %d not found"
	IntKeyExistsError           = "key %d already exists"
	FileDoesNotExistError       = "file %q does not exist"
)

// InvariantViolation is raised for bugs: scheduling into the past, an
// index slot that no longer matches its person, a dispatch on the wrong
// day. Per spec section 7 these are fatal and are not recovered from —
// callers panic with one of these rather than trying to continue.
type InvariantViolation struct {
	Day      int
	PersonID uint64
	Kind     string
	Detail   string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation on day %d for person %d (%s): %s",
		e.Day, e.PersonID, e.Kind, e.Detail)
}

// ConfigError wraps a configuration problem detected before tick 0:
// a malformed YAML document, an out-of-range id reference, a missing
// raster file required by a reporter.
type ConfigError struct {
	Section string
	Detail  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Section, e.Detail)
}
