package validation

import (
	"strings"
	"testing"

	"netclass-console/internal/model"
)

func TestValidateIP(t *testing.T) {
	tests := []struct {
		name        string
		ip          string
		expectError bool
	}{
		{name: "Valid IPv4", ip: "10.0.0.5", expectError: false},
		{name: "Valid IPv4 with spaces", ip: " 192.168.1.20 ", expectError: false},
		{name: "Valid IPv6", ip: "2001:db8::1", expectError: false},
		{name: "Invalid octet", ip: "10.0.0.256", expectError: true},
		{name: "Too few octets", ip: "10.0.0", expectError: true},
		{name: "Empty", ip: "", expectError: true},
		{name: "Hostname", ip: "lab-01.local", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIP(tt.ip)
			if tt.expectError && err == nil {
				t.Errorf("Expected error for IP %q, got nil", tt.ip)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error for IP %q, got %v", tt.ip, err)
			}
		})
	}
}

func TestValidatePCName(t *testing.T) {
	tests := []struct {
		name        string
		pcName      string
		expectError bool
	}{
		{name: "Simple", pcName: "Lab-01", expectError: false},
		{name: "With space and dot", pcName: "Room 3.PC_7", expectError: false},
		{name: "Hangul", pcName: "실습실-01", expectError: false},
		{name: "Punctuation", pcName: "Lab(01)", expectError: false},
		{name: "Hash sign", pcName: "Lab#1", expectError: false},
		{name: "Hangul at the limit", pcName: strings.Repeat("실", MaxPCNameLength), expectError: false},
		{name: "Empty", pcName: "", expectError: true},
		{name: "Only spaces", pcName: "   ", expectError: true},
		{name: "Control character", pcName: "Lab\x0001", expectError: true},
		{name: "Embedded newline", pcName: "Lab\n01", expectError: true},
		{name: "Too long", pcName: strings.Repeat("a", MaxPCNameLength+1), expectError: true},
		{name: "Too long in Hangul", pcName: strings.Repeat("실", MaxPCNameLength+1), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePCName(tt.pcName)
			if tt.expectError && err == nil {
				t.Errorf("Expected error for name %q, got nil", tt.pcName)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error for name %q, got %v", tt.pcName, err)
			}
		})
	}
}

func TestValidateSlotNumber(t *testing.T) {
	for slot := 1; slot <= model.MaxSnapshotSlots; slot++ {
		if err := ValidateSlotNumber(slot); err != nil {
			t.Errorf("Expected slot %d to be valid, got %v", slot, err)
		}
	}

	for _, slot := range []int{0, -1, model.MaxSnapshotSlots + 1} {
		if err := ValidateSlotNumber(slot); err == nil {
			t.Errorf("Expected slot %d to be rejected", slot)
		}
	}
}

func TestValidateRegistrationInput(t *testing.T) {
	t.Run("Valid input is normalized", func(t *testing.T) {
		reg := model.PCRegistration{Name: " Lab-01 ", LocationID: 1, IPAddress: " 10.0.0.5"}

		errors := ValidateRegistrationInput(&reg)

		if len(errors) != 0 {
			t.Fatalf("Expected no errors, got %v", errors)
		}
		if reg.Name != "Lab-01" || reg.IPAddress != "10.0.0.5" {
			t.Errorf("Expected trimmed fields, got %+v", reg)
		}
	})

	t.Run("All fields invalid", func(t *testing.T) {
		reg := model.PCRegistration{Name: "", LocationID: 0, IPAddress: "nope"}

		errors := ValidateRegistrationInput(&reg)

		for _, field := range []string{"pc_name", "location_id", "ip_address"} {
			if _, ok := errors[field]; !ok {
				t.Errorf("Expected error for field %s, got %v", field, errors)
			}
		}
	})
}

func TestValidateMaxLength(t *testing.T) {
	if err := ValidateMaxLength("description", strings.Repeat("x", MaxDescriptionLength), MaxDescriptionLength); err != nil {
		t.Errorf("Expected no error at the limit, got %v", err)
	}
	if err := ValidateMaxLength("description", strings.Repeat("x", MaxDescriptionLength+1), MaxDescriptionLength); err == nil {
		t.Error("Expected error above the limit")
	}
}
