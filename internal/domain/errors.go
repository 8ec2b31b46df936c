package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Argument errors
	ErrMsgInvalidArgument  = "invalid argument"
	ErrMsgPoolNotFound     = "pool not found"
	ErrMsgInvalidPullCount = "pull count must be 1, 5 or 10"
	ErrMsgUnknownRarity    = "unknown rarity"
	ErrMsgUnknownCurrency  = "unknown currency"
	ErrMsgNoActivePool     = "no active pool selected"

	// Resource errors
	ErrMsgInsufficientResources = "insufficient resources"

	// Pool errors
	ErrMsgPoolUnavailable = "pool is no longer available"

	// Engine errors
	ErrMsgPullInProgress = "a pull is already in progress"

	// Data integrity
	ErrMsgCatalogGap     = "catalog has no item for rarity"
	ErrMsgInvalidCatalog = "invalid catalog"

	// Store errors
	ErrMsgStoreFailure = "game state store failure"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrInvalidArgument = errors.New(ErrMsgInvalidArgument)

	// Argument errors that are also ErrInvalidArgument
	ErrPoolNotFound     = fmt.Errorf("%w: %s", ErrInvalidArgument, ErrMsgPoolNotFound)
	ErrInvalidPullCount = fmt.Errorf("%w: %s", ErrInvalidArgument, ErrMsgInvalidPullCount)
	ErrUnknownRarity    = fmt.Errorf("%w: %s", ErrInvalidArgument, ErrMsgUnknownRarity)
	ErrUnknownCurrency  = fmt.Errorf("%w: %s", ErrInvalidArgument, ErrMsgUnknownCurrency)
	ErrNoActivePool     = fmt.Errorf("%w: %s", ErrInvalidArgument, ErrMsgNoActivePool)

	ErrInsufficientResources = errors.New(ErrMsgInsufficientResources)
	ErrPoolUnavailable       = errors.New(ErrMsgPoolUnavailable)
	ErrPullInProgress        = errors.New(ErrMsgPullInProgress)

	// ErrCatalogGap is logged as a data integrity warning, never returned to callers.
	ErrCatalogGap     = errors.New(ErrMsgCatalogGap)
	ErrInvalidCatalog = errors.New(ErrMsgInvalidCatalog)

	ErrStoreFailure = errors.New(ErrMsgStoreFailure)
)

// InsufficientResourcesError carries the per-currency shortfall of a rejected pull.
type InsufficientResourcesError struct {
	Required  Cost `json:"required"`
	Available Cost `json:"available"`
	Shortfall Cost `json:"shortfall"`
}

func (e *InsufficientResourcesError) Error() string {
	parts := make([]string, 0, len(e.Shortfall))
	for _, c := range e.Shortfall.Keys() {
		parts = append(parts, fmt.Sprintf("%s short by %d", c, e.Shortfall[c]))
	}
	return fmt.Sprintf("%s: %s", ErrMsgInsufficientResources, strings.Join(parts, ", "))
}

func (e *InsufficientResourcesError) Unwrap() error {
	return ErrInsufficientResources
}

// NewInsufficientResourcesError builds the error from the required and available balances.
func NewInsufficientResourcesError(required, available Cost) *InsufficientResourcesError {
	return &InsufficientResourcesError{
		Required:  required.Clone(),
		Available: available.Clone(),
		Shortfall: required.Shortfall(available),
	}
}
