package game

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseDay
	PhaseVote
	PhaseNight
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseDay:
		return "day"
	case PhaseVote:
		return "vote"
	case PhaseNight:
		return "night"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// RoomStore is the persistence collaborator. All calls are best-effort,
// the session never blocks a game action on the database.
type RoomStore interface {
	UpdateLivePlayers(ctx context.Context, id int64, count int) error
	SetRoomInactive(ctx context.Context, id int64) error
	RecordMatchResult(ctx context.Context, userId int64, survived, wasMafia bool) error
}

type SessionConfig struct {
	Id         int64
	Name       string
	Owner      int64
	MinPlayers int
	MaxPlayers int
}

// Session is one live game room. Every mutating operation runs under the
// session mutex, so roster, phase, buffers and tally are never interleaved
// across connections. Rooms are fully independent, there is no cross-room
// locking.
type Session struct {
	mu sync.Mutex

	id         int64
	name       string
	owner      int64
	minPlayers int
	maxPlayers int

	phase   Phase
	round   int
	players map[string]*Participant

	// Night-action buffers. The mafia list is a multiset, the doctor and
	// detective slots are last-write-wins.
	mafiaTargets   []int64
	doctorSave     int64
	detectiveCheck int64

	// One active vote per voter, last value wins. The tally is derived at
	// resolution time.
	votes map[int64]int64

	history         []string
	superEventFired bool
	gameOver        bool
	resolving       bool

	rng             *rand.Rand
	superEventDelay time.Duration
	store           RoomStore
	log             *slog.Logger
}

const defaultSuperEventDelay = 2 * time.Second

func NewSession(cfg SessionConfig, store RoomStore) *Session {
	return &Session{
		id:              cfg.Id,
		name:            cfg.Name,
		owner:           cfg.Owner,
		minPlayers:      cfg.MinPlayers,
		maxPlayers:      cfg.MaxPlayers,
		phase:           PhaseWaiting,
		players:         map[string]*Participant{},
		votes:           map[int64]int64{},
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		superEventDelay: defaultSuperEventDelay,
		store:           store,
		log:             slog.Default().With("room", cfg.Id),
	}
}

func (s *Session) Id() int64 {
	return s.id
}

func (s *Session) Owner() int64 {
	return s.owner
}

// Join adds a participant to the roster. The error goes back to the joining
// connection only, the rest of the room never hears about a rejected join.
func (s *Session) Join(p *Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.players) >= s.maxPlayers {
		return ErrRoomFull
	}
	if _, taken := s.players[p.name]; taken {
		return ErrNameTaken
	}

	s.broadcast(makeUserJoined(p.name))
	s.players[p.name] = p
	s.sendTo(p, ServerEvent{Type: EventRoomState, Payload: s.snapshot()})
	s.persistLiveCount()

	s.log.Info("player joined", "player", p.name)
	return nil
}

// Leave removes a participant by name. It is a no-op when the name is not
// in the roster. Recorded votes and night actions of the leaver are kept,
// retracting them would retroactively invalidate barrier state.
func (s *Session) Leave(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[name]
	if !ok {
		return
	}

	delete(s.players, name)
	p.shutdown()
	s.broadcast(makeUserLeft(name))
	s.persistLiveCount()
	s.log.Info("player left", "player", name)

	// The leaver may have been the last straggler blocking a barrier.
	if !s.gameOver {
		s.maybeResolve()
	}
}

// Empty reports whether the roster is drained. The directory uses it to
// decide when a session can be released.
func (s *Session) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players) == 0
}

func (s *Session) ToggleReady(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameOver {
		return ErrGameAlreadyOver
	}
	p := s.byId(id)
	if p == nil {
		return ErrPlayerNotFound
	}
	if !p.alive {
		return ErrDeadActor
	}

	p.ready = !p.ready
	if p.ready {
		s.maybeResolve()
	}
	return nil
}

// StartGame runs the waiting → day transition. Validation fully precedes
// mutation: a failed start leaves the session untouched.
func (s *Session) StartGame(requester int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameOver {
		return ErrGameAlreadyOver
	}
	if s.phase != PhaseWaiting {
		return ErrInvalidPhase
	}
	if requester != s.owner {
		return ErrNotOwner
	}
	if len(s.players) < s.minPlayers || len(s.players) < 4 {
		return ErrInsufficientPlayers
	}
	if len(s.players) > len(archetypes) {
		return ErrInsufficientArchetypes
	}

	s.assignRolesAndArchetypes()

	s.round = 1
	s.phase = PhaseDay
	s.clearReady()
	s.clearNightBuffers()
	s.votes = map[int64]int64{}
	s.superEventFired = false

	// Roles are private, each participant learns only their own.
	for _, p := range s.players {
		s.sendTo(p, makeRoleAssigned(p.role, p.archetype))
	}
	s.broadcast(ServerEvent{Type: EventGameStarted})
	s.broadcast(makePhaseChange(s.phase, s.round))

	s.log.Info("game started", "players", len(s.players))
	return nil
}

// assignRolesAndArchetypes shuffles the roster and stamps roles by
// position: two mafia, one doctor, one detective, citizens for the rest.
// Archetypes are a distinct random sample, independent of roles.
func (s *Session) assignRolesAndArchetypes() {
	roster := make([]*Participant, 0, len(s.players))
	for _, p := range s.players {
		roster = append(roster, p)
	}
	// Map iteration order is random but not uniformly so, sort before
	// shuffling to make the permutation depend only on the rng.
	sortById(roster)
	s.rng.Shuffle(len(roster), func(i, j int) {
		roster[i], roster[j] = roster[j], roster[i]
	})

	deck := s.rng.Perm(len(archetypes))

	for i, p := range roster {
		switch {
		case i < 2:
			p.role = RoleMafia
		case i == 2:
			p.role = RoleDoctor
		case i == 3:
			p.role = RoleDetective
		default:
			p.role = RoleCitizen
		}
		archetype := archetypes[deck[i]]
		p.archetype = &archetype
		p.alive = true
	}
}

// AdvanceToVote is the external day-phase conclusion trigger. Only the
// owner may call it.
func (s *Session) AdvanceToVote(requester int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameOver {
		return ErrGameAlreadyOver
	}
	if s.phase != PhaseDay {
		return ErrInvalidPhase
	}
	if requester != s.owner {
		return ErrNotOwner
	}

	s.phase = PhaseVote
	s.clearReady()
	s.votes = map[int64]int64{}
	s.broadcast(makePhaseChange(s.phase, s.round))
	return nil
}

// SubmitVote records a vote. Voting for a dead participant is accepted, it
// simply can never win. Re-voting overwrites the voter's previous choice.
func (s *Session) SubmitVote(voter, target int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameOver {
		return ErrGameAlreadyOver
	}
	if s.phase != PhaseVote {
		return ErrInvalidPhase
	}
	from := s.byId(voter)
	if from == nil {
		return ErrPlayerNotFound
	}
	if !from.alive {
		return ErrDeadActor
	}
	to := s.byId(target)
	if to == nil {
		return ErrPlayerNotFound
	}

	s.votes[voter] = target
	from.ready = true
	s.broadcast(ServerEvent{Type: EventVoteCast, Payload: VoteCastPayload{From: from.name, To: to.name}})

	s.maybeResolve()
	return nil
}

// SubmitNightAction records a night action for an active role. Citizens
// have no night action and never block the night barrier.
func (s *Session) SubmitNightAction(actor, target int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameOver {
		return ErrGameAlreadyOver
	}
	if s.phase != PhaseNight {
		return ErrInvalidPhase
	}
	p := s.byId(actor)
	if p == nil {
		return ErrPlayerNotFound
	}
	if !p.alive {
		return ErrDeadActor
	}
	if s.byId(target) == nil {
		return ErrPlayerNotFound
	}

	switch p.role {
	case RoleMafia:
		s.mafiaTargets = append(s.mafiaTargets, target)
	case RoleDoctor:
		s.doctorSave = target
	case RoleDetective:
		s.detectiveCheck = target
	default:
		return ErrInvalidPhase
	}

	p.ready = true
	s.maybeResolve()
	return nil
}

// Chat relays a room message. Dead players may still talk.
func (s *Session) Chat(from int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.byId(from)
	if p == nil {
		return ErrPlayerNotFound
	}

	s.broadcast(ServerEvent{Type: EventChatMessage, Payload: ChatPayload{From: p.name, Text: text}})
	return nil
}

// History returns a copy of the narrative event log shown so far.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// Close tears the session down, broadcasting nothing. Used when the room
// is deleted from the directory.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, p := range s.players {
		delete(s.players, name)
		p.shutdown()
	}
}

// --- locked helpers, callers hold s.mu ---

func (s *Session) byId(id int64) *Participant {
	for _, p := range s.players {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (s *Session) clearReady() {
	for _, p := range s.players {
		p.ready = false
	}
}

func (s *Session) clearNightBuffers() {
	s.mafiaTargets = nil
	s.doctorSave = 0
	s.detectiveCheck = 0
}

func (s *Session) snapshot() RoomStatePayload {
	names := make([]string, 0, len(s.players))
	for name := range s.players {
		names = append(names, name)
	}
	return RoomStatePayload{RoomId: s.id, Phase: s.phase.String(), Round: s.round, Players: names}
}

// broadcast fans an event out to every participant. Failed deliveries are
// collected and pruned after the fan-out completes, never mid-loop, so the
// roster stays stable for the whole broadcast.
func (s *Session) broadcast(ev ServerEvent) {
	data := ev.encode()

	var failed []*Participant
	for _, p := range s.players {
		if err := p.deliver(data); err != nil {
			failed = append(failed, p)
		}
	}

	for _, p := range failed {
		delete(s.players, p.name)
		p.shutdown()
		s.log.Warn("pruned unresponsive player", "player", p.name)
	}
	if len(failed) > 0 {
		s.persistLiveCount()
		// The pruned connection may have been the last straggler
		// blocking a barrier.
		if !s.gameOver {
			s.maybeResolve()
		}
	}
}

func (s *Session) sendTo(p *Participant, ev ServerEvent) {
	if err := p.deliver(ev.encode()); err != nil {
		s.log.Warn("private delivery failed", "player", p.name)
	}
}

func (s *Session) persistLiveCount() {
	if s.store == nil {
		return
	}
	id, count := s.id, len(s.players)
	store, log := s.store, s.log
	go func() {
		if err := store.UpdateLivePlayers(context.Background(), id, count); err != nil {
			log.Error("live player count update failed", "err", err)
		}
	}()
}

func sortById(roster []*Participant) {
	for i := 1; i < len(roster); i++ {
		for j := i; j > 0 && roster[j].id < roster[j-1].id; j-- {
			roster[j], roster[j-1] = roster[j-1], roster[j]
		}
	}
}
