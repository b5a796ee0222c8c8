package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/stagekit/errors"
)

type retrySettings struct {
	MaxAttempts int `mapstructure:"max_attempts" validate:"gte=1,lte=10"`
}

type request struct {
	UserID  int           `json:"user_id" validate:"required,gt=0"`
	Timeout time.Duration `json:"timeout" validate:"gte=0"`
	Mode    string        `json:"mode" validate:"omitempty,oneof=sync async"`
	Retry   retrySettings `json:"retry"`
}

func TestValidate_Valid(t *testing.T) {
	req := request{UserID: 1, Timeout: time.Second, Mode: "sync", Retry: retrySettings{MaxAttempts: 3}}
	if err := Validate(req); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	err := Validate(request{Timeout: -time.Second, Mode: "later"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("expected field details, got %T", appErr.Details["fields"])
	}
	got := map[string]string{}
	for _, f := range fields {
		got[f.Field] = f.Message
	}
	if got["user_id"] != "is required" {
		t.Errorf("user_id: got %q", got["user_id"])
	}
	if !strings.HasPrefix(got["timeout"], "must be at least") {
		t.Errorf("timeout: got %q", got["timeout"])
	}
	if got["mode"] != "must be one of: sync async" {
		t.Errorf("mode: got %q", got["mode"])
	}
	if got["retry.max_attempts"] != "must be at least 1" {
		t.Errorf("retry.max_attempts: got %q", got["retry.max_attempts"])
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"UserID":     "user_i_d",
		"StageDelay": "stage_delay",
		"name":       "name",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
