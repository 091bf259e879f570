package interp

import "errors"

// Malformed-input errors. These are reported by Compile and the description
// codec; the offending description is invalid as a whole.
var (
	ErrInvalidDescription = errors.New("invalid interpretation description")
	ErrDomainSize         = errors.New("domain size must be between 1 and MaxDomainSize")
	ErrTableLength        = errors.New("table length does not match size^arity")
	ErrValueRange         = errors.New("function value out of domain range")
	ErrRelationValue      = errors.New("relation value must be 0 or 1")
	ErrDuplicateSymbol    = errors.New("symbol defined more than once")
	ErrKind               = errors.New("unknown operation kind")
)

// Vocabulary-mismatch errors raised during evaluation.
var (
	ErrUnknownSymbol    = errors.New("symbol not defined by interpretation")
	ErrConstantRange    = errors.New("numeric constant outside domain")
	ErrUndefinedValue   = errors.New("evaluation reached an undefined table entry")
	ErrFreeVariable     = errors.New("formula has an unbound variable")
	ErrTooManyVariables = errors.New("too many distinct variables")
)

// Capability and usage errors.
var (
	ErrArityUnsupported   = errors.New("operation arity above 3 is not supported for permutation")
	ErrNotNormalized      = errors.New("interpretation is not normalized")
	ErrSizeMismatch       = errors.New("domain sizes differ")
	ErrInvalidPermutation = errors.New("not a permutation of the domain")
)
