package services

// ErrorKind classifies service failures so controllers can map them onto
// HTTP statuses without string matching.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindConflict
	KindNotFound
	KindAuth
)

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func conflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func notFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func authError(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}
