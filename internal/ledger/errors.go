package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for matching with errors.Is.
var (
	ErrConfig     = errors.New("invalid table config")
	ErrValidation = errors.New("buyin outside table limits")
	ErrNotSeated  = errors.New("player not seated")
)

// ConfigError reports a missing or mistyped config field.
type ConfigError struct {
	Field   string // config key, e.g. "sb"
	Problem string // "is required", "must be an integer", ...
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s (%s) %s", fieldLabel(e.Field), e.Field, e.Problem)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// Bound identifies which buyin limit was violated.
type Bound int

const (
	MinBound Bound = iota
	MaxBound
)

// String returns the label used in validation messages
func (b Bound) String() string {
	switch b {
	case MinBound:
		return "min. buyin"
	case MaxBound:
		return "max. buyin"
	default:
		return "buyin limit"
	}
}

// ValidationError is returned when a buyin falls outside the table limits.
type ValidationError struct {
	Name      string
	Attempted int64
	Limit     int64
	Bound     Bound
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s attempted to buy in for $%d but %s is $%d", e.Name, e.Attempted, e.Bound, e.Limit)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// LookupError is returned when an operation names a player who isn't seated.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("player %s doesn't exist", e.Name)
}

func (e *LookupError) Unwrap() error { return ErrNotSeated }

func fieldLabel(field string) string {
	switch field {
	case KeySmallBlind:
		return "small blind"
	case KeyBigBlind:
		return "big blind"
	case KeyMinBuyin:
		return "min buyin"
	case KeyMaxBuyin:
		return "max buyin"
	case KeyRake:
		return "timed, hourly rake"
	default:
		return "field"
	}
}
