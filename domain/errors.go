package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user-not-found")
	ErrDuplicateUsername    = errors.New("duplicate-username")
	ErrRoomNotFound         = errors.New("room-not-found")
	UnexpectedDatabaseError = errors.New("unexpected-database-error")
)

var UnexpectedPasswordHashError = errors.New("unexpected-password-hash-error")

var (
	ErrInvalidSigningAlg             = errors.New("invalid-signing-alg")
	ErrExpiredToken                  = errors.New("expired-token")
	ErrInvalidTokenSignature         = errors.New("invalid-token-signature")
	ErrCorruptedToken                = errors.New("corrupted-token")
	UnexpectedTokenGenerationError   = errors.New("unexpected-token-generation-error")
	UnexpectedTokenVerificationError = errors.New("unexpected-token-verification-error")
)
