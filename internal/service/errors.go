package service

import "errors"

var (
	// ErrTurnInFlight is returned when a session already has a responder
	// call outstanding.
	ErrTurnInFlight = errors.New("a reply is still pending for this session")

	// ErrSessionNotFound is returned for unknown session ids, including
	// sessions deleted while a reply was pending.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAmbiguousSession is returned when an id prefix matches several sessions.
	ErrAmbiguousSession = errors.New("session id prefix is ambiguous")
)
