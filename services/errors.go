package services

import (
	"errors"
	"fmt"

	"gamification-service/models"
)

// ErrorKind groups domain failures for the transport layer.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindPrecondition
)

// Error is a typed domain failure. errors.Is matches the wrapped sentinel.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

var (
	ErrPlayerNotFound     = &Error{KindNotFound, errors.New("player not found")}
	ErrCampaignNotFound   = &Error{KindNotFound, errors.New("campaign not found")}
	ErrQuestNotFound      = &Error{KindNotFound, errors.New("quest not found")}
	ErrChallengeNotFound  = &Error{KindNotFound, errors.New("challenge not found")}
	ErrQuestNotCurrent    = &Error{KindPrecondition, errors.New("quest is not the current quest of the campaign")}
	ErrCampaignNotStarted = &Error{KindPrecondition, errors.New("campaign has not been started")}
	ErrCampaignCompleted  = &Error{KindPrecondition, errors.New("campaign already completed")}
	ErrLevelTooLow        = &Error{KindPrecondition, errors.New("player level is below the campaign requirement")}
	ErrAlreadyTracked     = &Error{KindPrecondition, errors.New("challenge is already tracked")}
	ErrMaxTrackedExceeded = &Error{KindPrecondition, fmt.Errorf("cannot track more than %d challenges", models.MaxTrackedChallenges)}
	ErrChallengeInactive  = &Error{KindPrecondition, errors.New("challenge is not active")}
	ErrChallengeCompleted = &Error{KindPrecondition, errors.New("challenge already completed")}
	ErrNotTracked         = &Error{KindPrecondition, errors.New("challenge is not tracked")}
	ErrRequirementUnmet   = &Error{KindPrecondition, errors.New("challenge requirement is not met")}
)

// KindOf returns the kind of a domain error, or 0 for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
