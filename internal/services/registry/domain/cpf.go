package domain

import (
	"regexp"
	"strings"
)

// cpfFormat accepts 11 digits with optional "." and "-" separators in the
// usual positions, e.g. 123.456.789-09 or 12345678909.
var cpfFormat = regexp.MustCompile(`^\d{3}\.?\d{3}\.?\d{3}-?\d{2}$`)

// ValidCPFFormat reports whether cpf is written in an accepted CPF layout.
// It does not trim; callers pass trimmed input.
func ValidCPFFormat(cpf string) bool {
	return cpfFormat.MatchString(cpf)
}

// NormalizeCPF strips every non-digit character.
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	b.Grow(len(cpf))
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCPF renders an 11-digit CPF as ddd.ddd.ddd-dd. Anything else is
// returned unchanged.
func FormatCPF(digits string) string {
	if len(digits) != 11 || NormalizeCPF(digits) != digits {
		return digits
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}

// ValidCPFCheckDigits verifies the two mod-11 check digits. Sequences of a
// single repeated digit pass the arithmetic but are not issued, so they are
// rejected.
func ValidCPFCheckDigits(cpf string) bool {
	digits := NormalizeCPF(cpf)
	if len(digits) != 11 {
		return false
	}
	if strings.Count(digits, digits[:1]) == len(digits) {
		return false
	}
	return checkDigit(digits[:9]) == digits[9] && checkDigit(digits[:10]) == digits[10]
}

func checkDigit(prefix string) byte {
	weight := len(prefix) + 1
	sum := 0
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * weight
		weight--
	}
	rem := sum % 11
	if rem < 2 {
		return '0'
	}
	return byte('0' + 11 - rem)
}
