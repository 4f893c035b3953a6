// Package apperr defines the error kinds the inventory usecases report.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidReason     Kind = "invalid_reason"
	KindInsufficientStock Kind = "insufficient_stock"
	KindOverReceipt       Kind = "over_receipt"
	KindHasActiveStock    Kind = "has_active_stock"
	KindHasReceivedItems  Kind = "has_received_items"
	KindNoStockAvailable  Kind = "no_stock_available"
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidState      Kind = "invalid_state"
	KindConflict          Kind = "conflict"
	KindBusy              Kind = "busy"
)

// Sentinels for errors.Is. Any *Error with the same kind matches.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidReason     = &Error{Kind: KindInvalidReason}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrOverReceipt       = &Error{Kind: KindOverReceipt}
	ErrHasActiveStock    = &Error{Kind: KindHasActiveStock}
	ErrHasReceivedItems  = &Error{Kind: KindHasReceivedItems}
	ErrNoStockAvailable  = &Error{Kind: KindNoStockAvailable}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrInvalidState      = &Error{Kind: KindInvalidState}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrBusy              = &Error{Kind: KindBusy}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func NotFound(entity, id string) *Error {
	return New(KindNotFound, "%s %s not found", entity, id)
}

func InvalidInput(format string, args ...any) *Error {
	return New(KindInvalidInput, format, args...)
}
