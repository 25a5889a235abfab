package errors

// IndexError provides specialized error handling for the per-column exact
// value index (§4.5): an operator the index variant can't evaluate against
// its rhs, or corruption detected while reconstructing one from a sealed
// segment's index section.
type IndexError struct {
	*baseError

	// indexKind names the index variant involved: "bitsliced", "hash", or
	// "positional".
	indexKind string

	// operator is the predicate operator that triggered the error, when
	// applicable.
	operator string

	// columnKind names the schema kind the index was built over, when
	// applicable.
	columnKind string
}

// NewIndexError creates a new index-specific error with the provided context.
func NewIndexError(err error, code ErrorCode, msg string) *IndexError {
	return &IndexError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the IndexError type.
func (ie *IndexError) WithMessage(msg string) *IndexError {
	ie.baseError.WithMessage(msg)
	return ie
}

// WithCode sets the error code while preserving the IndexError type.
func (ie *IndexError) WithCode(code ErrorCode) *IndexError {
	ie.baseError.WithCode(code)
	return ie
}

// WithDetail adds contextual information while maintaining the IndexError type.
func (ie *IndexError) WithDetail(key string, value any) *IndexError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// WithIndexKind records which index variant raised the error.
func (ie *IndexError) WithIndexKind(kind string) *IndexError {
	ie.indexKind = kind
	return ie
}

// WithOperator records which predicate operator triggered the error.
func (ie *IndexError) WithOperator(op string) *IndexError {
	ie.operator = op
	return ie
}

// WithColumnKind records the schema kind the index was built over.
func (ie *IndexError) WithColumnKind(kind string) *IndexError {
	ie.columnKind = kind
	return ie
}

// IndexKind returns the index variant involved in the error.
func (ie *IndexError) IndexKind() string { return ie.indexKind }

// Operator returns the predicate operator that triggered the error.
func (ie *IndexError) Operator() string { return ie.operator }

// ColumnKind returns the schema kind the index was built over.
func (ie *IndexError) ColumnKind() string { return ie.columnKind }

// NewOperatorUnsupportedError builds the error an index variant returns
// when asked to evaluate an operator it has no lookup strategy for.
func NewOperatorUnsupportedError(indexKind, operator string) *IndexError {
	return NewIndexError(nil, ErrorCodeIndexOperatorUnsupported, "operator not supported by index").
		WithIndexKind(indexKind).
		WithOperator(operator)
}

// NewIndexCorruptionError builds the error a Deserialize function returns
// when a sealed segment's index section fails to reconstruct.
func NewIndexCorruptionError(indexKind string, cause error) *IndexError {
	return NewIndexError(cause, ErrorCodeIndexCorrupted, "index data corrupted").
		WithIndexKind(indexKind)
}
