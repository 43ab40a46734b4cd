package game

import (
	"encoding/json"
	"errors"
)

// ActionKind is the closed set of inbound actions a connection may submit.
// The wire tag is matched once at decode time, handlers switch on the kind.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionChat
	ActionToggleReady
	ActionStartGame
	ActionBeginVote
	ActionVote
	ActionNightAction
)

var actionKinds = map[string]ActionKind{
	"chat":         ActionChat,
	"toggle_ready": ActionToggleReady,
	"start_game":   ActionStartGame,
	"begin_vote":   ActionBeginVote,
	"vote":         ActionVote,
	"night_action": ActionNightAction,
}

type ClientAction struct {
	Kind   ActionKind
	Target int64
	Text   string
}

var errUnknownAction = errors.New("unknown-action-type")

// decodeClientAction validates the shape of an inbound frame once, at the
// boundary. Handlers never look at raw payload maps.
func decodeClientAction(data []byte) (ClientAction, error) {
	var frame struct {
		Type   string `json:"type"`
		Target int64  `json:"target"`
		Text   string `json:"text"`
	}

	if err := json.Unmarshal(data, &frame); err != nil {
		return ClientAction{}, err
	}

	kind, ok := actionKinds[frame.Type]
	if !ok {
		return ClientAction{}, errUnknownAction
	}

	return ClientAction{Kind: kind, Target: frame.Target, Text: frame.Text}, nil
}
