package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the service layer. Handlers map these onto HTTP
// statuses; everything else surfaces as an internal error.
var (
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrChallengeInactive   = errors.New("challenge is not open for submissions")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrSubmissionForbidden = errors.New("submission belongs to another user")
	ErrAlreadyEvaluated    = errors.New("submission already evaluated")
	ErrAlreadyReviewed     = errors.New("submission already reviewed")
	ErrNotEvaluated        = errors.New("submission has not been evaluated yet")
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientCoins   = errors.New("insufficient coin balance")
	ErrWeekendOnly         = errors.New("submissions are only open on weekends")
)

// CodeRejectedError carries the full violation list from the code guard, so
// students see every problem at once instead of fixing them one by one.
type CodeRejectedError struct {
	Violations []string
}

func (e *CodeRejectedError) Error() string {
	return fmt.Sprintf("code rejected: %s", strings.Join(e.Violations, "; "))
}
