// Package domain defines error types for the Answer King aggregates.
package domain

import (
	"errors"
	"fmt"
)

// ArgumentError is returned when a guard rejects a constructor or method argument
type ArgumentError struct {
	Field  string
	Reason string
	Value  interface{}
}

// Error implements the error interface for ArgumentError
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: field=%s, reason=%s, value=%v", e.Field, e.Reason, e.Value)
}

// Is allows proper error type checking with errors.Is()
func (e *ArgumentError) Is(target error) bool {
	_, ok := target.(*ArgumentError)
	return ok
}

// LifecycleError is returned when an operation is attempted against an
// aggregate in an incompatible state.
type LifecycleError struct {
	Aggregate string
	ID        int64
	Reason    string
}

// Error implements the error interface for LifecycleError
func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s lifecycle: id=%d: %s", e.Aggregate, e.ID, e.Reason)
}

// Is allows proper error type checking with errors.Is()
func (e *LifecycleError) Is(target error) bool {
	t, ok := target.(*LifecycleError)
	if !ok {
		return false
	}
	return t.Aggregate == "" || t.Aggregate == e.Aggregate
}

// LineItemError is returned when a line item quantity change is rejected
type LineItemError struct {
	ProductID ProductID
	Reason    string
}

// Error implements the error interface for LineItemError
func (e *LineItemError) Error() string {
	return fmt.Sprintf("line item: product_id=%d: %s", e.ProductID, e.Reason)
}

// Is allows proper error type checking with errors.Is()
func (e *LineItemError) Is(target error) bool {
	_, ok := target.(*LineItemError)
	return ok
}

// Aggregate names used in lifecycle errors.
const (
	AggregateProduct  = "product"
	AggregateCategory = "category"
	AggregateTag      = "tag"
	AggregateOrder    = "order"
)

// Sentinels usable with errors.Is to match lifecycle errors of one aggregate.
var (
	ErrProductLifecycle  = &LifecycleError{Aggregate: AggregateProduct}
	ErrCategoryLifecycle = &LifecycleError{Aggregate: AggregateCategory}
	ErrTagLifecycle      = &LifecycleError{Aggregate: AggregateTag}
	ErrOrderLifecycle    = &LifecycleError{Aggregate: AggregateOrder}
)

// Helper functions for creating errors with context

// NewArgumentError creates a new ArgumentError
func NewArgumentError(field, reason string, value interface{}) error {
	return &ArgumentError{Field: field, Reason: reason, Value: value}
}

// NewLifecycleError creates a new LifecycleError
func NewLifecycleError(aggregate string, id int64, reason string) error {
	return &LifecycleError{Aggregate: aggregate, ID: id, Reason: reason}
}

// NewLineItemError creates a new LineItemError
func NewLineItemError(productID ProductID, reason string) error {
	return &LineItemError{ProductID: productID, Reason: reason}
}

// Type assertion helpers for use with errors.As()

// IsArgumentError checks if an error is an ArgumentError
func IsArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}

// IsLifecycleError checks if an error is a LifecycleError of any aggregate
func IsLifecycleError(err error) bool {
	var le *LifecycleError
	return errors.As(err, &le)
}

// IsLineItemError checks if an error is a LineItemError
func IsLineItemError(err error) bool {
	var lie *LineItemError
	return errors.As(err, &lie)
}
