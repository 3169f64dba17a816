package validator

import (
	"errors"
	"testing"
)

type sampleRequest struct {
	Area   float64 `json:"area" validate:"gt=0"`
	Kind   string  `json:"propertyType" validate:"required,oneof=apartment house commercial"`
	Hidden string  `json:"-" validate:"omitempty,max=3"`
}

func TestFieldErrorsUsesJSONNames(t *testing.T) {
	val := New()

	err := val.Struct(sampleRequest{Area: 0, Kind: "castle"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	fields := FieldErrors(err)
	if _, ok := fields["area"]; !ok {
		t.Fatalf("expected area error, got %v", fields)
	}
	if msg := fields["propertyType"]; msg != "Valor inválido. Opções: apartment house commercial." {
		t.Fatalf("unexpected propertyType message %q", msg)
	}
}

func TestFieldErrorsFallsBackToStructFieldName(t *testing.T) {
	val := New()

	err := val.Struct(sampleRequest{Area: 1, Kind: "house", Hidden: "toolong"})
	fields := FieldErrors(err)
	if _, ok := fields["Hidden"]; !ok {
		t.Fatalf("expected Hidden error, got %v", fields)
	}
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	if FieldErrors(errors.New("boom")) != nil {
		t.Fatal("expected nil for non-validation error")
	}
	if FieldErrors(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestNotBlankRejectsWhitespace(t *testing.T) {
	val := New()

	type addressOnly struct {
		Address string `json:"address" validate:"notblank"`
	}
	fields := FieldErrors(val.Struct(addressOnly{Address: "   "}))
	if fields["address"] != "Campo obrigatório." {
		t.Fatalf("unexpected errors %v", fields)
	}
	if err := val.Struct(addressOnly{Address: "Rua A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
