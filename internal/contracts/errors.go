package contracts

import (
	"errors"
	"fmt"
)

// ⭐ SSOT: 도메인 에러는 여기서만 정의
var (
	ErrConfiguration       = errors.New("configuration error")
	ErrEmptyInput          = errors.New("empty input")
	ErrInsufficientData    = errors.New("insufficient data")
	ErrDegenerateMetric    = errors.New("degenerate metric")
	ErrDuplicateInstrument = errors.New("duplicate instrument")
	ErrNoPriceData         = errors.New("no price data")
	ErrMissingTopic        = errors.New("missing topic")
	ErrMissingColumn       = errors.New("missing column")
)

// ConfigurationError is a fatal pre-flight failure (e.g. weight model incomplete)
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// EmptyInputError means there is nothing to score or rank
type EmptyInputError struct {
	What string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("empty input: %s", e.What)
}

func (e *EmptyInputError) Unwrap() error { return ErrEmptyInput }

// InsufficientDataError excludes one instrument from the metrics batch
type InsufficientDataError struct {
	Symbol       string
	Observations int
	Reason       string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s (%d observations): %s", e.Symbol, e.Observations, e.Reason)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// DegenerateMetricError marks one undefined field of a record
type DegenerateMetricError struct {
	Symbol string
	Metric string
}

func (e *DegenerateMetricError) Error() string {
	return fmt.Sprintf("degenerate %s for %s: zero denominator", e.Metric, e.Symbol)
}

func (e *DegenerateMetricError) Unwrap() error { return ErrDegenerateMetric }
