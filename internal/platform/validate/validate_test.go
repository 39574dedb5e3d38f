package validate

import (
	"errors"
	"testing"
)

type sample struct {
	Name   string `json:"name" validate:"required"`
	Status string `json:"status" validate:"omitempty,oneof=open closed"`
	Age    *int   `json:"age" validate:"required,gte=0,lte=150"`
}

func intPtr(v int) *int { return &v }

func TestValidate_OK(t *testing.T) {
	v := New()
	if err := v.Validate(&sample{Name: "a", Age: intPtr(0)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFirstError_UsesJSONName(t *testing.T) {
	v := New()
	err := v.Validate(&sample{Age: intPtr(3)})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := FirstError(err); got != "name is required" {
		t.Errorf("expected 'name is required', got %q", got)
	}
}

func TestFirstError_Oneof(t *testing.T) {
	v := New()
	err := v.Validate(&sample{Name: "a", Status: "pending", Age: intPtr(1)})
	if got := FirstError(err); got != "status must be one of [open closed]" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestFirstError_Range(t *testing.T) {
	v := New()
	err := v.Validate(&sample{Name: "a", Age: intPtr(200)})
	if got := FirstError(err); got != "age must be at most 150" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestFirstError_PlainError(t *testing.T) {
	if got := FirstError(errors.New("boom")); got != "boom" {
		t.Errorf("expected boom, got %q", got)
	}
	if got := FirstError(nil); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
