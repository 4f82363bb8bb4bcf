package utils

import (
	"math"
	"strings"
)

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// MaskEmail masks the local part of an email address for logging
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return MaskString(email, 0)
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}

// MaskPhoneNumber keeps only the last four digits of a phone number
func MaskPhoneNumber(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

// MaskString masks all but the first showChars characters
func MaskString(s string, showChars int) string {
	if len(s) <= showChars {
		return s
	}
	return s[:showChars] + strings.Repeat("*", len(s)-showChars)
}
