package xlsb

import "fmt"

// XLSBError represents an error that occurred while reading or writing a
// BIFF12 record stream.
type XLSBError struct {
	Message string
}

func (e *XLSBError) Error() string {
	return e.Message
}

// NewXLSBError creates a new XLSBError with the given message.
func NewXLSBError(format string, args ...interface{}) *XLSBError {
	return &XLSBError{Message: fmt.Sprintf(format, args...)}
}

// ErrLengthOverflow is returned when a record or payload length does not fit
// in the 28-bit range of the variable-length length encoding.
var ErrLengthOverflow = &XLSBError{Message: "length exceeds the representable range of the length encoding"}
