// AngelaMos | 2026
// biometric.go

package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	biometricPrefix = "BIO"
	MinBiometricID  = 1
	MaxBiometricID  = 9999
)

var strictBiometricPattern = regexp.MustCompile(`^BIO\d+$`)

// ParseBiometricID accepts either the bare number ("7") or the prefixed
// employee code ("BIO007", any case).
func ParseBiometricID(raw string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, biometricPrefix)
	return parseBiometricDigits(raw, s)
}

// ParseBiometricCode only accepts the prefixed employee code.
func ParseBiometricCode(raw string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if !strictBiometricPattern.MatchString(s) {
		return 0, fmt.Errorf("%q must look like BIO003: %w", raw, ErrInvalidBiometricID)
	}
	return parseBiometricDigits(raw, strings.TrimPrefix(s, biometricPrefix))
}

func parseBiometricDigits(raw, digits string) (int, error) {
	if digits == "" {
		return 0, fmt.Errorf("%q has no digits: %w", raw, ErrInvalidBiometricID)
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%q is not numeric: %w", raw, ErrInvalidBiometricID)
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < MinBiometricID || n > MaxBiometricID {
		return 0, fmt.Errorf(
			"%q is outside %d..%d: %w",
			raw,
			MinBiometricID,
			MaxBiometricID,
			ErrInvalidBiometricID,
		)
	}

	return n, nil
}

func FormatBiometricID(n int) string {
	return fmt.Sprintf("%s%03d", biometricPrefix, n)
}
