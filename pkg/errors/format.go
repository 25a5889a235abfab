package errors

// FormatError is a specialized error for binary container failures: a
// segment with a bad magic number, an unsupported framing version, or a
// payload that fails its CRC check on load.
type FormatError struct {
	*baseError
	path    string
	version uint16
}

func NewFormatError(err error, code ErrorCode, msg string) *FormatError {
	return &FormatError{baseError: NewBaseError(err, code, msg)}
}

func (fe *FormatError) WithPath(path string) *FormatError {
	fe.path = path
	return fe
}

func (fe *FormatError) WithVersion(version uint16) *FormatError {
	fe.version = version
	return fe
}

func (fe *FormatError) WithDetail(key string, value any) *FormatError {
	fe.baseError.WithDetail(key, value)
	return fe
}

func (fe *FormatError) Path() string     { return fe.path }
func (fe *FormatError) Version() uint16  { return fe.version }

// NewCRCMismatchError reports a segment whose trailer checksum does not
// match its computed contents (§4.3 invariants: CRC mismatch is a hard
// load error).
func NewCRCMismatchError(path string) *FormatError {
	return NewFormatError(nil, ErrorCodeSegmentCorrupted, "segment crc mismatch").WithPath(path)
}

// NewVersionMismatchError reports a segment framed with an unsupported
// version tag.
func NewVersionMismatchError(path string, version uint16) *FormatError {
	return NewFormatError(nil, ErrorCodeVersionMismatch, "unsupported segment version").
		WithPath(path).
		WithVersion(version)
}
