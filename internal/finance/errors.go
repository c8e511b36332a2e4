package finance

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientData = errors.New("insufficient price data")
	ErrDataUnavailable  = errors.New("price data unavailable")
	ErrInvalidInput     = errors.New("invalid simulation input")
)

// InsufficientDataError identifies the symbol whose history cannot be simulated.
type InsufficientDataError struct {
	Symbol string
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient price data for %s: %s", e.Symbol, e.Reason)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// DataUnavailableError reports a failed or timed out fetch for a symbol.
type DataUnavailableError struct {
	Symbol string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("price data unavailable: %v", e.Err)
	}
	return fmt.Sprintf("price data unavailable for %s: %v", e.Symbol, e.Err)
}

func (e *DataUnavailableError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDataUnavailable}
	}
	return []error{ErrDataUnavailable, e.Err}
}
