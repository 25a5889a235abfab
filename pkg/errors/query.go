package errors

// QueryError is a specialized error for expression evaluation failures:
// an extractor with no schema match, an operator/type mismatch, or a
// malformed expression tree.
type QueryError struct {
	*baseError
	extractor string // Field/meta/type extractor being evaluated, if any.
	operator  string // Relational operator being applied, if any.
}

func NewQueryError(err error, code ErrorCode, msg string) *QueryError {
	return &QueryError{baseError: NewBaseError(err, code, msg)}
}

func (qe *QueryError) WithMessage(msg string) *QueryError {
	qe.baseError.WithMessage(msg)
	return qe
}

func (qe *QueryError) WithDetail(key string, value any) *QueryError {
	qe.baseError.WithDetail(key, value)
	return qe
}

func (qe *QueryError) WithExtractor(extractor string) *QueryError {
	qe.extractor = extractor
	return qe
}

func (qe *QueryError) WithOperator(operator string) *QueryError {
	qe.operator = operator
	return qe
}

func (qe *QueryError) Extractor() string { return qe.extractor }
func (qe *QueryError) Operator() string  { return qe.operator }

// NewTypeClashError reports an operator applied to an incompatible column
// or value type.
func NewTypeClashError(extractor, operator string) *QueryError {
	return NewQueryError(nil, ErrorCodeTypeClash, "operator not applicable to extractor's type").
		WithExtractor(extractor).
		WithOperator(operator)
}
