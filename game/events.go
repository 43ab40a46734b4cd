package game

import "encoding/json"

// Outbound event types. The frontend switches on the "type" field.
const (
	EventUserJoined          = "user_joined"
	EventUserLeft            = "user_left"
	EventRoomState           = "room_state"
	EventRoleAssigned        = "role_assigned"
	EventGameStarted         = "game_started"
	EventPhaseChange         = "phase_change"
	EventChatMessage         = "chat_message"
	EventVoteCast            = "vote_cast"
	EventPlayerKilledVote    = "player_killed_vote"
	EventPlayerSaved         = "player_saved"
	EventPlayerKilled        = "player_killed"
	EventInvestigationResult = "investigation_result"
	EventMiniEvent           = "mini_event"
	EventSuperEvent          = "super_event"
	EventGameOver            = "game_over"
	EventRolesReveal         = "roles_reveal"
	EventError               = "error"
)

type ServerEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// encode marshals the event for the wire. Payloads are plain structs,
// a marshal failure here is a programming error, not a runtime condition.
func (e ServerEvent) encode() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		panic("unmarshalable server event: " + e.Type)
	}
	return data
}

type UserPayload struct {
	Username string `json:"username"`
}

type RoomStatePayload struct {
	RoomId  int64    `json:"room_id"`
	Phase   string   `json:"phase"`
	Round   int      `json:"round"`
	Players []string `json:"players"`
}

type RoleAssignedPayload struct {
	Role      string     `json:"role"`
	Archetype *Archetype `json:"archetype,omitempty"`
}

type PhaseChangePayload struct {
	Phase string `json:"phase"`
	Round int    `json:"round"`
}

type ChatPayload struct {
	From string `json:"from"`
	Text string `json:"text"`
}

type VoteCastPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type VictimPayload struct {
	Victim string `json:"victim"`
}

type InvestigationPayload struct {
	Target  string `json:"target"`
	IsMafia bool   `json:"is_mafia"`
}

type NarrativePayload struct {
	Text string `json:"text"`
}

type GameOverPayload struct {
	Winner string `json:"winner"`
}

type RoleRevealEntry struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Alive    bool   `json:"alive"`
}

type RolesRevealPayload struct {
	Players []RoleRevealEntry `json:"players"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func makeUserJoined(username string) ServerEvent {
	return ServerEvent{Type: EventUserJoined, Payload: UserPayload{Username: username}}
}

func makeUserLeft(username string) ServerEvent {
	return ServerEvent{Type: EventUserLeft, Payload: UserPayload{Username: username}}
}

func makeRoleAssigned(role Role, archetype *Archetype) ServerEvent {
	return ServerEvent{Type: EventRoleAssigned, Payload: RoleAssignedPayload{Role: role.String(), Archetype: archetype}}
}

func makePhaseChange(phase Phase, round int) ServerEvent {
	return ServerEvent{Type: EventPhaseChange, Payload: PhaseChangePayload{Phase: phase.String(), Round: round}}
}

func makeError(err error) ServerEvent {
	return ServerEvent{Type: EventError, Payload: ErrorPayload{Message: err.Error()}}
}
