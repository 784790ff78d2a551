package app

import "strings"

// normalizePhone applies the phone-stage acceptance rules: a shared contact
// payload is taken as-is, text starting with "+" is taken as-is, and a bare
// digit string is accepted with exactly 9 digits getting the country calling
// code prefixed. Anything else is rejected and the stage is retried.
func normalizePhone(countryCode, contactPhone, text string) (string, bool) {
	if contactPhone != "" {
		return contactPhone, true
	}
	if strings.HasPrefix(text, "+") && len(text) > 1 {
		return text, true
	}
	if text != "" && isDigits(text) {
		if len(text) == 9 {
			return countryCode + text, true
		}
		return text, true
	}
	return "", false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
