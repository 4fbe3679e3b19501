package item

import "errors"

// Domain errors
var (
	ErrItemNotFound = errors.New("item not found")
	ErrConflict     = errors.New("conflicting concurrent write")
	ErrStorage      = errors.New("storage failure")
)

// ValidationError reports a malformed create or replace payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Kind classifies an error returned by the item store or service.
type Kind int

const (
	KindNone Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return "storage"
	}
}

// KindOf maps err onto the error taxonomy. Anything unrecognised is a storage failure.
func KindOf(err error) Kind {
	var verr *ValidationError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrItemNotFound):
		return KindNotFound
	case errors.As(err, &verr):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindStorage
	}
}
