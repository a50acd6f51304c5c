package session

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped) by Controller operations.
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrCannotContinue    = errors.New("session cannot continue")
	ErrAnchorsAlreadySet = errors.New("coherence anchors already set")
	ErrAnchorsWrongTurn  = errors.New("coherence anchors may only be set after turn 1")
	ErrTurnOutOfOrder    = errors.New("turn number does not match current turn")
	ErrSessionExists     = errors.New("session already exists")
)

// TransitionError reports a rejected state transition on a session.
type TransitionError struct {
	SessionID string
	Op        string
	Err       error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

func transitionErr(id, op string, err error) error {
	return &TransitionError{SessionID: id, Op: op, Err: err}
}
