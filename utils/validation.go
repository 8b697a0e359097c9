// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

// optional + followed by up to 15 digits, no leading zero
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

var phoneFormatting = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// CleanPhone strips the formatting characters people type into phone numbers.
func CleanPhone(phone string) string {
	return phoneFormatting.Replace(strings.TrimSpace(phone))
}

// ValidatePhone checks if a center contact number can receive SMS.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(CleanPhone(phone))
}
