package util

import "errors"

var (
	ErrSessionNotFound   = errors.New("review session not found")
	ErrWrongPassword     = errors.New("incorrect password")
	ErrTooManyAttempts   = errors.New("too many incorrect attempts, start a new session to try again")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrReviewerRequired  = errors.New("please enter your name to begin reviewing answers")
	ErrReviewerUnset     = errors.New("reviewer name not set")
	ErrInvalidScore      = errors.New("score must be an integer between 0 and 10")
	ErrReviewDone        = errors.New("all answers have been reviewed")
	ErrSubmissionPending = errors.New("feedback submitted, continue to the next answer")
	ErrNothingSubmitted  = errors.New("nothing submitted for the current answer")
	ErrContinueDisabled  = errors.New("continue is only available for append-only feedback")
)
