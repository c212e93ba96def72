package orinctl

import (
	"errors"
	"fmt"
	"testing"
)

func TestStructuredError(t *testing.T) {
	err := NewError("enqueue", ErrCodeQueueFull, "command queue full")

	if err.Op != "enqueue" {
		t.Errorf("expected Op=enqueue, got %s", err.Op)
	}
	if err.Code != ErrCodeQueueFull {
		t.Errorf("expected Code=queue full, got %s", err.Code)
	}

	expected := "orinctl: command queue full (op=enqueue)"
	if err.Error() != expected {
		t.Errorf("expected error message %q, got %q", expected, err.Error())
	}
}

func TestSequenceErrorMentionsKind(t *testing.T) {
	err := NewSequenceError("enqueue", FaultRecovery, ErrCodeMissingTemplate, "no template registered")
	expected := "orinctl: no template registered (op=enqueue seq=fault-recovery)"
	if err.Error() != expected {
		t.Errorf("expected error message %q, got %q", expected, err.Error())
	}
}

func TestCooldownErrorCarriesReadyAt(t *testing.T) {
	err := NewCooldownError("enqueue", NormalReboot, Instant(1_000_000))

	readyAt, ok := CooldownReadyAt(err)
	if !ok {
		t.Fatal("expected a cooldown ready-at instant")
	}
	if readyAt != Instant(1_000_000) {
		t.Errorf("expected ready-at 1000000, got %d", readyAt)
	}
}

func TestIsCodeMatchesThroughWrapping(t *testing.T) {
	inner := NewSequenceError("enqueue", NormalReboot, ErrCodeCooldownActive, "cooling down")
	wrapped := fmt.Errorf("execute: %w", inner)

	if !IsCode(wrapped, ErrCodeCooldownActive) {
		t.Error("IsCode should see through wrapping")
	}
	if IsCode(wrapped, ErrCodeQueueFull) {
		t.Error("IsCode must not match a different code")
	}
}

func TestErrorsIsComparesByCode(t *testing.T) {
	a := NewError("enqueue", ErrCodeQueueFull, "full")
	b := NewError("other", ErrCodeQueueFull, "also full")
	if !errors.Is(a, b) {
		t.Error("errors with the same code should match")
	}
}

func TestWrapErrorKeepsStructuredContext(t *testing.T) {
	inner := NewCooldownError("enqueue", NormalReboot, Instant(500))
	wrapped := WrapError("execute", ErrCodeBusy, inner)

	if wrapped.Op != "execute" {
		t.Errorf("expected op=execute, got %s", wrapped.Op)
	}
	if wrapped.Code != ErrCodeCooldownActive {
		t.Errorf("wrapping must keep the inner code, got %s", wrapped.Code)
	}
	if WrapError("execute", ErrCodeBusy, nil) != nil {
		t.Error("wrapping nil should return nil")
	}
}
