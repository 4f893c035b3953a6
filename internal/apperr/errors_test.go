package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIs_MatchesByKind(t *testing.T) {
	err := New(KindInsufficientStock, "item %s would go negative", "abc")

	if !errors.Is(err, ErrInsufficientStock) {
		t.Error("expected error to match ErrInsufficientStock")
	}
	if errors.Is(err, ErrOverReceipt) {
		t.Error("did not expect error to match ErrOverReceipt")
	}
}

func TestErrorIs_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("record: %w", NotFound("item", "42"))

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected wrapped error to match ErrNotFound")
	}
	if got := KindOf(err); got != KindNotFound {
		t.Errorf("expected kind %q, got %q", KindNotFound, got)
	}
}

func TestKindOf_PlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != "" {
		t.Errorf("expected empty kind, got %q", got)
	}
}

func TestError_Message(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindBusy, cause, "lock %s", "item:1")

	if err.Error() != "lock item:1: connection reset" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if ErrNotFound.Error() != "not_found" {
		t.Errorf("unexpected sentinel message %q", ErrNotFound.Error())
	}
}
