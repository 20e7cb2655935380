// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	// Clean the phone number
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")

	// Regular expression for international phone numbers
	// Allows + prefix followed by 7-15 digits
	regex := `^\+?[1-9]\d{1,14}$`
	match, _ := regexp.MatchString(regex, cleaned)
	return match
}

// ValidatePostcode checks a UK postcode (outward + inward, case-insensitive)
func ValidatePostcode(postcode string) bool {
	cleaned := strings.ToUpper(strings.ReplaceAll(postcode, " ", ""))
	regex := `^[A-Z]{1,2}\d[A-Z\d]?\d[A-Z]{2}$`
	match, _ := regexp.MatchString(regex, cleaned)
	return match
}
