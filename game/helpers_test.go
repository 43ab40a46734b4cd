package game

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MaxKorjik/Mafia-Online/domain"
)

// --- RoomStore ---

type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) UpdateLivePlayers(ctx context.Context, id int64, count int) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}

func (m *MockRoomStore) SetRoomInactive(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRoomStore) RecordMatchResult(ctx context.Context, userId int64, survived, wasMafia bool) error {
	args := m.Called(ctx, userId, survived, wasMafia)
	return args.Error(0)
}

// --- RoomRepo ---

type MockRoomRepo struct {
	mock.Mock
}

func (m *MockRoomRepo) CreateRoom(ctx context.Context, name string, owner int64, minPlayers, maxPlayers int, private bool) (domain.Room, error) {
	args := m.Called(ctx, name, owner, minPlayers, maxPlayers, private)
	return args.Get(0).(domain.Room), args.Error(1)
}

func (m *MockRoomRepo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Room), args.Error(1)
}

func (m *MockRoomRepo) ListActiveRooms(ctx context.Context) ([]domain.Room, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *MockRoomRepo) DeleteRoom(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRoomRepo) TopPlayers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.LeaderboardEntry), args.Error(1)
}

// --- UserGetter ---

type MockUserGetter struct {
	mock.Mock
}

func (m *MockUserGetter) GetUserById(ctx context.Context, id int64) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

// --- TokenVerifier ---

type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) VerifyToken(token string) (int64, error) {
	args := m.Called(token)
	return args.Get(0).(int64), args.Error(1)
}

// --- session helpers ---

func newTestSession(minPlayers, maxPlayers int) *Session {
	s := NewSession(SessionConfig{Id: 1, Name: "basement", Owner: 1, MinPlayers: minPlayers, MaxPlayers: maxPlayers}, nil)
	s.superEventDelay = 0
	s.rng = rand.New(rand.NewSource(42))
	return s
}

func addPlayer(t *testing.T, s *Session, id int64, name string) *Participant {
	t.Helper()
	p := NewParticipant(id, name, nil)
	require.NoError(t, s.Join(p))
	return p
}

type recordedEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// drainEvents empties a participant's outbox and decodes the frames.
func drainEvents(t *testing.T, p *Participant) []recordedEvent {
	t.Helper()
	events := []recordedEvent{}
	for {
		select {
		case data, ok := <-p.outbox:
			if !ok {
				return events
			}
			var ev recordedEvent
			require.NoError(t, json.Unmarshal(data, &ev))
			events = append(events, ev)
		default:
			return events
		}
	}
}

func eventsOfType(events []recordedEvent, eventType string) []recordedEvent {
	matches := []recordedEvent{}
	for _, ev := range events {
		if ev.Type == eventType {
			matches = append(matches, ev)
		}
	}
	return matches
}

func decodePayload[T any](t *testing.T, ev recordedEvent) T {
	t.Helper()
	var payload T
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	return payload
}

// setRoles stamps roles directly, bypassing the random assignment, so
// resolution scenarios can pin who is who.
func setRoles(s *Session, roles map[string]Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := 0
	for name, role := range roles {
		p := s.players[name]
		p.role = role
		p.alive = true
		archetype := archetypes[i%len(archetypes)]
		p.archetype = &archetype
		i++
	}
}

func forcePhase(s *Session, phase Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
	if s.round == 0 {
		s.round = 1
	}
	for _, p := range s.players {
		p.ready = false
	}
}
