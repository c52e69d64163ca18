package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNoPath            = errors.New("no path found between the selected nodes")
	ErrTripNotFound      = errors.New("trip not found")
	ErrStopNotFound      = errors.New("trip stop not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrTerminalStatus    = errors.New("trip is already done or cancelled")
	ErrInvalidTransition = errors.New("trip status transition not allowed")
	ErrNegativeStock     = errors.New("stock cannot be negative")
	ErrInvalidNodeRef    = errors.New("invalid graph node references")
	ErrInvalidWeight     = errors.New("edge weight must be non-negative")
	ErrTripCreateFailed  = errors.New("unable to create trip")

	ErrInvalidFilter      = errors.New("invalid trip filter")
	ErrZeroDelta          = errors.New("stock delta must be non-zero")
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// Returned by a trip store when the in-commit stock check fails.
	ErrStockConflict = errors.New("stock changed during commit")
)

// StockConflictError names the product whose stock could not be withdrawn.
type StockConflictError struct {
	ProductID   uuid.UUID
	ProductName string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock conflict for product %s (%s)", e.ProductName, e.ProductID)
}

func (e *StockConflictError) Unwrap() error { return ErrStockConflict }

// PlanningKind groups planning failures for callers.
type PlanningKind string

const (
	KindValidation PlanningKind = "validation"
	KindInfeasible PlanningKind = "infeasible"
	KindRouting    PlanningKind = "routing"
)

type PlanningReason string

const (
	ReasonNoStops              PlanningReason = "no_stops"
	ReasonNoCargo              PlanningReason = "no_cargo"
	ReasonInvalidQuantity      PlanningReason = "invalid_quantity"
	ReasonDuplicateProduct     PlanningReason = "duplicate_product"
	ReasonTruckUnavailable     PlanningReason = "truck_unavailable"
	ReasonDriverUnavailable    PlanningReason = "driver_unavailable"
	ReasonInvalidStopLocations PlanningReason = "invalid_stop_locations"
	ReasonInvalidStartNode     PlanningReason = "invalid_start_node"
	ReasonInvalidProducts      PlanningReason = "invalid_products"
	ReasonInsufficientStock    PlanningReason = "insufficient_stock"
	ReasonPayloadExceeded      PlanningReason = "payload_exceeds_capacity"
	ReasonNoRoute              PlanningReason = "no_route"
)

// PlanningError is a recoverable, caller-facing planning failure.
// Message is safe to show to the requester.
type PlanningError struct {
	Kind    PlanningKind
	Reason  PlanningReason
	Message string
	Err     error
}

func (e *PlanningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *PlanningError) Unwrap() error { return e.Err }

func NewPlanningError(kind PlanningKind, reason PlanningReason, msg string) *PlanningError {
	return &PlanningError{Kind: kind, Reason: reason, Message: msg}
}

// InsufficientStock builds the error naming the short product.
func InsufficientStock(productName string) *PlanningError {
	return NewPlanningError(KindInfeasible, ReasonInsufficientStock, fmt.Sprintf("insufficient stock for %s", productName))
}

// AsPlanningError unwraps err into a PlanningError when it is one.
func AsPlanningError(err error) (*PlanningError, bool) {
	var pe *PlanningError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
