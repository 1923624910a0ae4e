package model

import "errors"

// InvariantError is returned when an edit would leave the form in a shape
// the engine does not allow. The model is left untouched.
type InvariantError struct {
	msg string
}

func (e *InvariantError) Error() string {
	return e.msg
}

func invariant(msg string) error {
	return &InvariantError{msg: msg}
}

var (
	ErrOptionsNotSupported = invariant("question type does not take options")
	ErrFixedOptions        = invariant("linear scale questions have exactly two options")
	ErrLastOption          = invariant("cannot delete the last option of a question")
	ErrLastQuestion        = invariant("cannot delete the last question of a form")
	ErrScaleNotSupported   = invariant("only linear scale options carry a scale")
	ErrScaleOutOfRange     = invariant("scale value out of range for this endpoint")
	ErrIndexOutOfRange     = invariant("question index out of range")
	ErrIllegalSnapshot     = invariant("illegal snapshot flag combination")
)

var (
	ErrInvalidQuestionType = errors.New("invalid question type")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrOptionNotFound      = errors.New("option not found")
)

// IsInvariantViolation reports whether err was caused by a rejected edit.
func IsInvariantViolation(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
