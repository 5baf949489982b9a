package service

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session already completed")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrRollbackFailed   = errors.New("rollback failed")
	ErrInvalidTopic     = errors.New("no usable topics")
	ErrEmptySession     = errors.New("session has no conversation to export")
)
