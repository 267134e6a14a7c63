// Package errors provides structured registry errors with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Customer errors
	CodeCustomerNameEmpty    Code = "CUSTOMER_NAME_EMPTY"
	CodeCustomerCPFDuplicate Code = "CUSTOMER_CPF_DUPLICATE"

	// CPF errors
	CodeCPFInvalidFormat      Code = "CPF_INVALID_FORMAT"
	CodeCPFInvalidCheckDigits Code = "CPF_INVALID_CHECK_DIGITS"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// Validation reports whether the code describes bad user input rather than
// a state or infrastructure failure.
func (c Code) Validation() bool {
	switch c {
	case CodeCustomerNameEmpty, CodeCPFInvalidFormat, CodeCPFInvalidCheckDigits:
		return true
	default:
		return false
	}
}
