package errors

// ReaderError is a specialized error for the inbound reader contract (§6):
// end-of-input, stalled/timed-out sources, and per-record parse/format
// failures.
type ReaderError struct {
	*baseError
	row int // Record index the error occurred at, if applicable (-1 if n/a).
}

func NewReaderError(err error, code ErrorCode, msg string) *ReaderError {
	return &ReaderError{baseError: NewBaseError(err, code, msg), row: -1}
}

func (re *ReaderError) WithRow(row int) *ReaderError {
	re.row = row
	return re
}

func (re *ReaderError) Row() int { return re.row }

// IsEndOfInput reports whether err is a reader error signaling a
// successfully exhausted source, as opposed to a failure.
func IsEndOfInput(err error) bool {
	re, ok := err.(*ReaderError)
	return ok && re.Code() == ErrorCodeEndOfInput
}
