package domain

import "errors"

var (
	ErrNotCompleted            = errors.New("quest not completed")
	ErrAlreadyClaimed          = errors.New("quest already claimed")
	ErrDuplicateGrant          = errors.New("duplicate grant")
	ErrNoCatalogMatch          = errors.New("no catalog item for rarity")
	ErrExternalProviderTimeout = errors.New("listening provider timed out")
	ErrInvalidPeriodTransition = errors.New("completion for a period older than the last recorded one")

	ErrQuestNotFound     = errors.New("quest not found")
	ErrNotStreamingQuest = errors.New("quest has no streaming targets")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidUser       = errors.New("user id is required")
	ErrVersionConflict   = errors.New("game state changed concurrently")
	ErrPeriodIncomplete  = errors.New("not every quest of the period is completed and claimed")
)
