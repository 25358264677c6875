package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/audioscribe/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("input", "talk.mp3")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("input", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"whisper", "openai"}

	if New().OneOf("backend", "whisper", allowed).HasErrors() {
		t.Error("expected whisper to be allowed")
	}
	if New().OneOf("backend", "", allowed).HasErrors() {
		t.Error("empty values are left to Required")
	}

	v := New().OneOf("backend", "vosk", allowed)
	if !v.HasErrors() {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(v.Errors()[0].Message, "whisper, openai") {
		t.Errorf("unexpected message %q", v.Errors()[0].Message)
	}
}

func TestValidatorMinAndCustom(t *testing.T) {
	v := New().Min("retry.max_attempts", 0, 1).Custom(false, "openai.api_key", "is required for the openai backend")
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(v.Errors()))
	}
}

func TestValidatorValidate(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Errorf("expected nil for no errors, got %v", err)
	}

	err := New().Required("a", "").Required("b", "").Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	if !strings.Contains(err.Error(), "a: is required; b: is required") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Required("language", "fr").OneOf("tier", "base", []string{"base"}).Min("n", 2, 1)
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

func TestStructValidateValid(t *testing.T) {
	type Sidecar struct {
		URL   string `mapstructure:"url" validate:"required,url"`
		Model string `mapstructure:"model" validate:"required"`
	}

	if err := Validate(Sidecar{URL: "http://localhost:8387", Model: "base"}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	type Sidecar struct {
		BaseURL string `mapstructure:"base_url" validate:"required,url"`
		Backend string `mapstructure:"backend" validate:"oneof=whisper openai"`
	}

	err := Validate(Sidecar{BaseURL: "", Backend: "vosk"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "base_url: is required") {
		t.Errorf("expected error to use the config key, got %q", errStr)
	}
	if !strings.Contains(errStr, "backend: must be one of: whisper openai") {
		t.Errorf("expected oneof message, got %q", errStr)
	}
}

func TestStructValidateNested(t *testing.T) {
	type Retry struct {
		MaxAttempts int `mapstructure:"max_attempts" validate:"min=1"`
	}
	type Root struct {
		Retry Retry `mapstructure:"retry"`
	}

	err := Validate(Root{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "retry.max_attempts: must be at least 1") {
		t.Errorf("expected nested path, got %q", err.Error())
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MaxAttempts"); got != "max_attempts" {
		t.Errorf("got %q", got)
	}
}
