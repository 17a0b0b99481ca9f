package device

import (
	"fmt"
	"regexp"
)

// Validation constants.
const (
	maxNameLength        = 100
	maxDescriptionLength = 500

	// macPattern matches six colon-separated hexadecimal octet pairs,
	// case-insensitive. Separators other than ":" are rejected.
	macPattern = `^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`
)

var macRegex = regexp.MustCompile(macPattern)

// IsValidMAC reports whether addr is a well-formed hardware address.
func IsValidMAC(addr string) bool {
	return macRegex.MatchString(addr)
}

// ValidateMAC returns ErrInvalidAddress if addr is not a well-formed
// hardware address.
func ValidateMAC(addr string) error {
	if !macRegex.MatchString(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return nil
}

// ValidateName checks that a device name is present and within limits.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateSeason checks that a season value is one of the recognised modes.
// A nil season is valid (unset).
func ValidateSeason(s *Season) error {
	if s == nil {
		return nil
	}
	for _, valid := range AllSeasons() {
		if *s == valid {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidSeason, *s)
}

// ValidateDevice performs validation on a device before persistence.
// Returns the first validation failure found.
func ValidateDevice(d *Device) error {
	if d == nil {
		return ErrDeviceNotFound
	}
	if err := ValidateMAC(d.MAC); err != nil {
		return err
	}
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if d.Description != nil && len(*d.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidName, maxDescriptionLength)
	}
	return nil
}

// ValidateState performs validation on a device state before persistence.
func ValidateState(s *State) error {
	if s == nil {
		return ErrStateNotFound
	}
	if err := ValidateMAC(s.MAC); err != nil {
		return err
	}
	if err := ValidateSeason(s.Season); err != nil {
		return err
	}
	if s.TempMin != nil && s.TempMax != nil && *s.TempMin > *s.TempMax {
		return fmt.Errorf("%w: temp_min %v exceeds temp_max %v", ErrInvalidState, *s.TempMin, *s.TempMax)
	}
	return nil
}
