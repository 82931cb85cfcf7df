package model

import (
	"errors"
	"testing"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleSecurity, true},
		{RoleAdmin, RoleResident, true},
		{RoleSecurity, RoleAdmin, false},
		{RoleSecurity, RoleSecurity, true},
		{RoleSecurity, RoleResident, true},
		{RoleResident, RoleAdmin, false},
		{RoleResident, RoleSecurity, false},
		{RoleResident, RoleResident, true},
		// Unknown roles fail-closed.
		{"unknown", RoleResident, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleResident, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrValidation) {
			t.Errorf("ValidatePassword(%q) error should wrap ErrValidation, got %v", tt.password, err)
		}
	}
}
