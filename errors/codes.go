package errors

// Codes used across the daf storage contract, the chain engine, and the
// query evaluator. Each corresponds to one of the error kinds named in
// spec.md §7.
const (
	NotFound         Code = "NotFound"
	AlreadyExists    Code = "AlreadyExists"
	ShapeMismatch    Code = "ShapeMismatch"
	InconsistentAxis Code = "InconsistentAxis"
	InvalidChain     Code = "InvalidChain"
	ForbiddenDelete  Code = "ForbiddenDelete"
	LockMisuse       Code = "LockMisuse"
	TypeMismatch     Code = "TypeMismatch"
	QueryParseError  Code = "QueryParseError"
	UnknownOperation Code = "UnknownOperation"
)
