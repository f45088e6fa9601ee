package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := stderrors.New("chrome exited")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "direct", err: New(Auth, "login rejected"), want: Auth},
		{name: "wrapped once", err: fmt.Errorf("query: %w", Wrap(NotFound, "project not found", base)), want: NotFound},
		{name: "plain error", err: base, want: Unexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAndMessage(t *testing.T) {
	err := fmt.Errorf("outer: %w", Wrap(DriverInit, "browser failed to start", stderrors.New("exec: not found")))

	if !Is(err, DriverInit) {
		t.Errorf("Is(DriverInit) = false, want true")
	}
	if Is(nil, DriverInit) {
		t.Errorf("Is(nil) = true, want false")
	}
	if got := Message(err, "operation failed"); got != "browser failed to start" {
		t.Errorf("Message() = %q, want %q", got, "browser failed to start")
	}
	if got := Message(stderrors.New("raw"), "operation failed"); got != "operation failed" {
		t.Errorf("Message() = %q, want fallback", got)
	}
}

func TestErrorString(t *testing.T) {
	if got := New(Submit, "submit button not found").Error(); got != "submit: submit button not found" {
		t.Errorf("Error() = %q", got)
	}
	e := Wrap(Auth, "login failed", stderrors.New("timeout"))
	if got := e.Error(); got != "auth: login failed: timeout" {
		t.Errorf("Error() = %q", got)
	}
	if !stderrors.Is(e, e.Err) {
		t.Errorf("Unwrap chain broken")
	}
}
