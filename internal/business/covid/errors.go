package covid

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch wraps network and transport failures talking to a provider.
	ErrFetch = errors.New("fetch failed")
	// ErrSchema signals a payload whose shape does not match what the pipeline expects.
	ErrSchema = errors.New("unexpected payload shape")
	// ErrNonNumericDeaths signals a death count that cannot be read as a number.
	ErrNonNumericDeaths = errors.New("death count is not numeric")
	// ErrUnknownAgeLabel signals an age group label outside the known formats.
	ErrUnknownAgeLabel = errors.New("unrecognized age group label")
	// ErrUnknownState signals a selected state that is not in the current tables.
	ErrUnknownState = errors.New("unknown state")
	// ErrZeroConfirmed signals a fatality rate over zero confirmed cases.
	ErrZeroConfirmed = errors.New("confirmed count must be positive")
)

// RowError identifies the input row that failed normalization.
type RowError struct {
	Source string // "arcgis" or "socrata"
	Index  int
	State  string
	Field  string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d (%s) field %s=%q: %v", e.Source, e.Index, e.State, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
