// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotFound, "element not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "element not found" {
		t.Errorf("expected message 'element not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrCodeInvalidSelector, "invalid name pattern %q", "a*b")
	if err.Message != `invalid name pattern "a*b"` {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestNewWithContext(t *testing.T) {
	ctx := map[string]any{
		"name":            "cpu_energy",
		"registered_type": "u64",
	}
	err := NewWithContext(ErrCodeDuplicateMetric, "metric already registered", ctx)

	if err.Code != ErrCodeDuplicateMetric {
		t.Errorf("expected code %s, got %s", ErrCodeDuplicateMetric, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["name"] != "cpu_energy" {
		t.Errorf("expected name to be cpu_energy")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeInternal, "listening on control socket", cause)

	if err.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeNotFound, "not found"),
			expected: "[NOT_FOUND] not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(ErrCodeUnavailable, "shutting down")); got != ErrCodeUnavailable {
		t.Errorf("expected %s, got %s", ErrCodeUnavailable, got)
	}

	wrapped := fmt.Errorf("outer: %w", New(ErrCodeNotFound, "missing"))
	if got := CodeOf(wrapped); got != ErrCodeNotFound {
		t.Errorf("expected %s through wrapping, got %s", ErrCodeNotFound, got)
	}

	if got := CodeOf(errors.New("plain")); got != ErrCodeInternal {
		t.Errorf("expected %s for plain errors, got %s", ErrCodeInternal, got)
	}
}

func TestHasCode(t *testing.T) {
	err := New(ErrCodeRateLimitExceeded, "command queue full")
	if !HasCode(err, ErrCodeRateLimitExceeded) {
		t.Error("expected HasCode to match")
	}
	if HasCode(err, ErrCodeNotFound) {
		t.Error("expected HasCode to reject a different code")
	}
	if HasCode(errors.New("plain"), ErrCodeInternal) {
		t.Error("expected HasCode to reject plain errors")
	}
	if HasCode(nil, ErrCodeInternal) {
		t.Error("expected HasCode to reject nil")
	}
}
