package services

import (
	"fmt"
	"regexp"
	"trace-emissions-service/internal/domain"
)

var zipPattern = regexp.MustCompile(`\d{5}`)

// ExtractZIP returns the first run of five digits in a free-text location.
func ExtractZIP(location string) (string, error) {
	zip := zipPattern.FindString(location)
	if zip == "" {
		return "", fmt.Errorf("extract zip from %q: %w", location, domain.ErrMalformedInput)
	}
	return zip, nil
}
