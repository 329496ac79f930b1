package validation

import (
	"fmt"

	dErrors "biogate/pkg/domain-errors"
)

// HTTP body limits
const (
	// DefaultMaxUploadBytes caps a biometric sample upload (10 MB).
	DefaultMaxUploadBytes = 10 << 20

	// MultipartMemory is how much of a multipart form is buffered in memory
	// before spilling to temporary files.
	MultipartMemory = 1 << 20
)

// String element length limits
const (
	// MaxUserIDLength matches the user_id column width.
	MaxUserIDLength = 255
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckNotEmpty validates that a byte payload was supplied.
func CheckNotEmpty(fieldName string, value []byte) error {
	if len(value) == 0 {
		return dErrors.New(dErrors.CodeValidation, fieldName+" is empty")
	}
	return nil
}
