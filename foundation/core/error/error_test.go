// File: error_test.go
// Title: Error Module Tests
// Description: Tests for error creation, wrapping, codes and severities.
// Author: vozinv maintainers
// Version: v0.2.0
// Created: 2026-03-02
// Modified: 2026-09-14
//
// Change History:
// - 2026-03-02 v0.1.0: Initial tests
// - 2026-09-14 v0.2.0: Tests for chain helpers with fmt.Errorf wrapping

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	msg := "cantidad inválida"
	err := New(msg)

	if err == nil {
		t.Fatal("New() returned nil")
	}
	if err.Error() != msg {
		t.Errorf("Error() = %q, want %q", err.Error(), msg)
	}
	if err.Code() != CodeUnknown {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeUnknown)
	}
	if err.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityMedium)
	}
	if err.Timestamp().IsZero() {
		t.Error("Timestamp() should not be zero")
	}
}

func TestNewf(t *testing.T) {
	err := Newf("índice %d fuera de rango", 7)
	if err.Error() != "índice 7 fuera de rango" {
		t.Errorf("Newf() = %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		message  string
		wantNil  bool
		wantMsg  string
		wantCode Code
	}{
		{
			name:    "wrap nil error",
			err:     nil,
			message: "wrapper",
			wantNil: true,
		},
		{
			name:     "wrap standard error",
			err:      errors.New("original"),
			message:  "wrapper",
			wantMsg:  "wrapper: original",
			wantCode: CodeUnknown,
		},
		{
			name:     "wrap structured error keeps code",
			err:      New("original").WithCode(CodeInvalidFormat),
			message:  "wrapper",
			wantMsg:  "wrapper: original",
			wantCode: CodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, tt.message)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Wrap() = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got.Error(), tt.wantMsg)
			}
			if got.Code() != tt.wantCode {
				t.Errorf("Code() = %v, want %v", got.Code(), tt.wantCode)
			}
			if !errors.Is(got, tt.err) {
				t.Error("errors.Is should find the wrapped cause")
			}
		})
	}
}

func TestWrap_TruncatesDeepChains(t *testing.T) {
	var err error = New("root")
	for i := 0; i < MaxErrorChainDepth+2; i++ {
		err = Wrap(err, fmt.Sprintf("level %d", i))
	}

	e := err.(*Error)
	if e.Severity() != SeverityHigh {
		t.Errorf("truncated chain severity = %v, want high", e.Severity())
	}
	if !strings.Contains(e.Error(), "chain truncated") {
		t.Errorf("truncated chain message = %q", e.Error())
	}
}

func TestWithCode_SetsSeverity(t *testing.T) {
	tests := []struct {
		code Code
		want Severity
	}{
		{CodeInvalidFormat, SeverityLow},
		{CodeValueOutOfRange, SeverityLow},
		{CodeNetworkError, SeverityMedium},
		{CodeConfigError, SeverityHigh},
		{CodeServiceInitialization, SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := New("x").WithCode(tt.code)
			if err.Severity() != tt.want {
				t.Errorf("Severity() = %v, want %v", err.Severity(), tt.want)
			}
		})
	}
}

func TestWithCode_KeepsExplicitSeverity(t *testing.T) {
	err := New("x").WithSeverity(SeverityCritical).WithCode(CodeInvalidFormat)
	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want critical", err.Severity())
	}
}

func TestDetails_ReturnsCopy(t *testing.T) {
	err := New("x").WithDetail("field", "quantity")
	details := err.Details()
	details["field"] = "changed"

	if err.Details()["field"] != "quantity" {
		t.Error("Details() should return a copy")
	}
}

func TestHasCode(t *testing.T) {
	base := New("bad").WithCode(CodeInvalidFormat)
	wrapped := fmt.Errorf("edit failed: %w", base)

	if !HasCode(wrapped, CodeInvalidFormat) {
		t.Error("HasCode() should see codes through fmt.Errorf wrapping")
	}
	if HasCode(wrapped, CodeNotFound) {
		t.Error("HasCode() matched the wrong code")
	}
	if HasCode(errors.New("plain"), CodeInvalidFormat) {
		t.Error("HasCode() on a plain error should be false")
	}
	if GetCode(wrapped) != CodeInvalidFormat {
		t.Errorf("GetCode() = %v", GetCode(wrapped))
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("GetCode() on a plain error should be CodeUnknown")
	}
	if GetSeverity(wrapped) != SeverityLow {
		t.Errorf("GetSeverity() = %v", GetSeverity(wrapped))
	}
}

func TestMarshalJSON(t *testing.T) {
	err := Wrap(errors.New("strconv"), "cantidad inválida").
		WithCode(CodeInvalidFormat).
		WithOperation("inventory.Edit").
		WithRequestID("req-1").
		WithDetail("field", "quantity")

	data, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		t.Fatalf("MarshalJSON() error = %v", marshalErr)
	}

	var decoded map[string]interface{}
	if jsonErr := json.Unmarshal(data, &decoded); jsonErr != nil {
		t.Fatalf("invalid JSON: %v", jsonErr)
	}

	checks := map[string]string{
		"message":    "cantidad inválida",
		"code":       "INVALID_FORMAT",
		"severity":   "low",
		"operation":  "inventory.Edit",
		"request_id": "req-1",
		"cause":      "strconv",
	}
	for key, want := range checks {
		if decoded[key] != want {
			t.Errorf("%s = %v, want %v", key, decoded[key], want)
		}
	}
}

func TestString(t *testing.T) {
	err := New("boom").WithCode(CodeInternal).WithOperation("server.Start").WithDetail("b", 2).WithDetail("a", 1)
	s := err.String()

	for _, want := range []string{"Error: boom", "Code: INTERNAL", "Operation: server.Start", "Details: {a=1, b=2}"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q in %q", want, s)
		}
	}
}
