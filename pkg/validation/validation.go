package validation

import (
	"fmt"
	"net"
	"strings"
	"unicode"
	"unicode/utf8"

	"netclass-console/internal/model"
)

// Field limits shared with the database schema
const (
	MaxPCNameLength       = 100
	MaxDescriptionLength  = 255
	MaxSoftwareNameLength = 200
	MaxCommandTypeLength  = 50
)

// ValidateIP validates an IP address format (IPv4 or IPv6)
func ValidateIP(ip string) error {
	if net.ParseIP(strings.TrimSpace(ip)) == nil {
		return fmt.Errorf("invalid IP address format: %s", ip)
	}
	return nil
}

// ValidatePCName checks that a PC name is present, printable and within the
// column limit. Uniqueness is left to the registration procedure.
func ValidatePCName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("PC name is required")
	}

	if utf8.RuneCountInString(name) > MaxPCNameLength {
		return fmt.Errorf("PC name cannot exceed %d characters", MaxPCNameLength)
	}

	for _, r := range name {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("PC name contains a non-printable character")
		}
	}

	return nil
}

// ValidatePositiveID checks that an identifier parsed from a request is usable
func ValidatePositiveID(fieldName string, id int) error {
	if id <= 0 {
		return fmt.Errorf("%s must be a positive integer", fieldName)
	}
	return nil
}

// ValidateSlotNumber checks a snapshot slot number
func ValidateSlotNumber(slot int) error {
	if slot < 1 || slot > model.MaxSnapshotSlots {
		return fmt.Errorf("slot number must be between 1 and %d", model.MaxSnapshotSlots)
	}
	return nil
}

// ValidateRequired checks if a string field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateMaxLength checks an optional free-text field
func ValidateMaxLength(fieldName, value string, max int) error {
	if len(value) > max {
		return fmt.Errorf("%s cannot exceed %d characters", fieldName, max)
	}
	return nil
}

// ValidateRegistrationInput validates all fields for registering a new PC.
// The IP address is trimmed in place.
func ValidateRegistrationInput(reg *model.PCRegistration) map[string]string {
	errors := make(map[string]string)

	reg.Name = strings.TrimSpace(reg.Name)
	if err := ValidatePCName(reg.Name); err != nil {
		errors["pc_name"] = err.Error()
	}

	if err := ValidatePositiveID("location_id", reg.LocationID); err != nil {
		errors["location_id"] = err.Error()
	}

	reg.IPAddress = strings.TrimSpace(reg.IPAddress)
	if err := ValidateIP(reg.IPAddress); err != nil {
		errors["ip_address"] = err.Error()
	}

	return errors
}
