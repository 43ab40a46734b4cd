package game

import "errors"

var (
	ErrRoomNotFound           = errors.New("room-not-found")
	ErrRoomFull               = errors.New("room-full")
	ErrNameTaken              = errors.New("name-taken")
	ErrPlayerNotFound         = errors.New("player-not-found")
	ErrInvalidPhase           = errors.New("invalid-phase")
	ErrNotOwner               = errors.New("not-owner")
	ErrInsufficientPlayers    = errors.New("insufficient-players")
	ErrInsufficientArchetypes = errors.New("insufficient-archetypes")
	ErrGameAlreadyOver        = errors.New("game-already-over")
	ErrDeadActor              = errors.New("dead-actor")
)
