package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("admin@x.com"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	if err := ValidateEmail("  admin@x.com  "); err != nil {
		t.Fatalf("email with surrounding spaces rejected: %v", err)
	}
	if err := ValidateEmail(""); err == nil {
		t.Fatal("empty email accepted")
	}
	if err := ValidateEmail("not-an-email"); err == nil {
		t.Fatal("malformed email accepted")
	}
}

func TestValidateLength(t *testing.T) {
	if err := ValidateLength("Acme", "name", 2, 200); err != nil {
		t.Fatalf("valid length rejected: %v", err)
	}
	if err := ValidateLength("A", "name", 2, 200); err == nil {
		t.Fatal("too-short value accepted")
	}
	if err := ValidateLength("  A  ", "name", 2, 200); err == nil {
		t.Fatal("trimmed length must be used")
	}
}

func TestGenerateInvitationToken(t *testing.T) {
	a, err := GenerateInvitationToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	b, err := GenerateInvitationToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if a == b {
		t.Fatal("tokens must not repeat")
	}
}
