package game

import (
	"context"
	"time"
)

const (
	miniEventChance    = 0.8
	superEventChance   = 0.25
	superEventTruthful = 0.6
)

// maybeResolve fires a resolution step once the current phase's barrier is
// satisfied. Callers hold the session mutex. Resolution itself broadcasts,
// and a broadcast that prunes a dead connection re-checks the barrier, so
// the resolving flag keeps that re-check from nesting a second resolution.
func (s *Session) maybeResolve() {
	if s.resolving {
		return
	}
	s.resolving = true
	defer func() { s.resolving = false }()

	switch s.phase {
	case PhaseVote:
		if s.voteBarrier() {
			s.resolveVotes()
		}
	case PhaseNight:
		if s.nightBarrier() {
			s.resolveNight()
		}
	}
}

// voteBarrier: every alive participant has signaled ready.
func (s *Session) voteBarrier() bool {
	alive := 0
	for _, p := range s.players {
		if !p.alive {
			continue
		}
		alive++
		if !p.ready {
			return false
		}
	}
	return alive > 0
}

// nightBarrier: every alive participant holding an active role has signaled
// ready. Citizens never block the night.
func (s *Session) nightBarrier() bool {
	actors := 0
	for _, p := range s.players {
		if !p.alive || !p.role.hasNightAction() {
			continue
		}
		actors++
		if !p.ready {
			return false
		}
	}
	return actors > 0
}

// pickMax returns the key with the strictly highest count. Ties break to
// the lowest id so repeated runs over identical input elect the same
// target.
func pickMax(counts map[int64]int) (int64, bool) {
	var winner int64
	best := 0
	for id, count := range counts {
		if count > best || (count == best && id < winner) {
			winner = id
			best = count
		}
	}
	return winner, best > 0
}

// tallyWinner folds the per-voter choices into a tally and elects the
// winner. Votes against dead participants were accepted at submission
// time but can never win.
func tallyWinner(votes map[int64]int64, isAlive func(int64) bool) (int64, bool) {
	counts := map[int64]int{}
	for _, target := range votes {
		if !isAlive(target) {
			continue
		}
		counts[target]++
	}
	return pickMax(counts)
}

// mafiaVictim elects the most-targeted id from the night multiset. Targets
// that are no longer alive are dropped before tallying, the submission path
// never validated them.
func mafiaVictim(targets []int64, isAlive func(int64) bool) (int64, bool) {
	counts := map[int64]int{}
	for _, target := range targets {
		if !isAlive(target) {
			continue
		}
		counts[target]++
	}
	return pickMax(counts)
}

func (s *Session) resolveVotes() {
	isAlive := func(id int64) bool {
		p := s.byId(id)
		return p != nil && p.alive
	}

	if winner, ok := tallyWinner(s.votes, isAlive); ok {
		victim := s.byId(winner)
		victim.alive = false
		s.broadcast(ServerEvent{Type: EventPlayerKilledVote, Payload: VictimPayload{Victim: victim.name}})
		s.log.Info("voted out", "player", victim.name, "round", s.round)
	}

	if s.checkWin() {
		return
	}

	s.phase = PhaseNight
	s.clearReady()
	s.votes = map[int64]int64{}
	s.clearNightBuffers()
	s.superEventFired = false
	s.broadcast(makePhaseChange(s.phase, s.round))
}

func (s *Session) resolveNight() {
	isAlive := func(id int64) bool {
		p := s.byId(id)
		return p != nil && p.alive
	}

	if target, ok := mafiaVictim(s.mafiaTargets, isAlive); ok {
		victim := s.byId(target)
		if s.doctorSave == target {
			s.broadcast(ServerEvent{Type: EventPlayerSaved, Payload: VictimPayload{Victim: victim.name}})
			s.log.Info("doctor save", "player", victim.name, "round", s.round)
		} else {
			victim.alive = false
			s.broadcast(ServerEvent{Type: EventPlayerKilled, Payload: VictimPayload{Victim: victim.name}})
			s.log.Info("night kill", "player", victim.name, "round", s.round)
		}
	}

	// The investigation result goes to the detective's connection only.
	if s.detectiveCheck != 0 {
		target := s.byId(s.detectiveCheck)
		detective := s.byRole(RoleDetective)
		if target != nil && detective != nil {
			s.sendTo(detective, ServerEvent{
				Type:    EventInvestigationResult,
				Payload: InvestigationPayload{Target: target.name, IsMafia: target.role == RoleMafia},
			})
		}
	}

	s.clearNightBuffers()

	s.generateMiniEvent()
	// Pacing only. The pause is not a coordination point and is never
	// interrupted.
	if s.superEventDelay > 0 {
		time.Sleep(s.superEventDelay)
	}
	s.generateSuperEvent()

	if s.checkWin() {
		return
	}

	s.phase = PhaseDay
	s.round++
	s.clearReady()
	s.broadcast(makePhaseChange(s.phase, s.round))
}

// checkWin evaluates the win condition and finishes the game when one side
// has won. Returns true when the session entered the terminal phase.
func (s *Session) checkWin() bool {
	mafiaAlive, othersAlive := 0, 0
	for _, p := range s.players {
		if !p.alive {
			continue
		}
		if p.role == RoleMafia {
			mafiaAlive++
		} else {
			othersAlive++
		}
	}

	winner := ""
	switch {
	case mafiaAlive == 0:
		winner = "citizens"
	case mafiaAlive >= othersAlive:
		winner = "mafia"
	}
	if winner == "" {
		return false
	}

	s.phase = PhaseEnded
	s.gameOver = true
	s.broadcast(ServerEvent{Type: EventGameOver, Payload: GameOverPayload{Winner: winner}})

	// Role secrecy ends permanently at game end.
	roster := s.sortedRoster()
	reveal := make([]RoleRevealEntry, 0, len(roster))
	for _, p := range roster {
		reveal = append(reveal, RoleRevealEntry{Username: p.name, Role: p.role.String(), Alive: p.alive})
	}
	s.broadcast(ServerEvent{Type: EventRolesReveal, Payload: RolesRevealPayload{Players: reveal}})

	s.log.Info("game over", "winner", winner, "rounds", s.round)
	s.persistGameOver(roster)
	return true
}

func (s *Session) persistGameOver(roster []*Participant) {
	if s.store == nil {
		return
	}

	type result struct {
		id       int64
		survived bool
		wasMafia bool
	}
	results := []result{}
	for _, p := range roster {
		if p.Guest() {
			continue
		}
		results = append(results, result{id: p.id, survived: p.alive, wasMafia: p.role == RoleMafia})
	}

	id, store, log := s.id, s.store, s.log
	go func() {
		ctx := context.Background()
		if err := store.SetRoomInactive(ctx, id); err != nil {
			log.Error("room inactive flag failed", "err", err)
		}
		for _, r := range results {
			if err := store.RecordMatchResult(ctx, r.id, r.survived, r.wasMafia); err != nil {
				log.Error("match result update failed", "user", r.id, "err", err)
			}
		}
	}()
}

// generateMiniEvent delivers an ambient hint to one randomly chosen
// observer. Personal sensory flavor, never broadcast.
func (s *Session) generateMiniEvent() {
	if s.rng.Float64() >= miniEventChance {
		return
	}
	roster := s.sortedRoster()
	if len(roster) == 0 {
		return
	}

	observer := roster[s.rng.Intn(len(roster))]
	text := miniEvents[s.rng.Intn(len(miniEvents))]

	s.history = append(s.history, text)
	s.sendTo(observer, ServerEvent{Type: EventMiniEvent, Payload: NarrativePayload{Text: text}})
}

// generateSuperEvent may broadcast a character-bound hint pointing at the
// mafia, or at an innocent decoy. Runs at most once per night. When the
// chosen participant's archetype has no bound event the generation fizzles
// silently.
func (s *Session) generateSuperEvent() {
	if s.superEventFired {
		return
	}
	s.superEventFired = true

	if s.rng.Float64() >= superEventChance {
		return
	}
	truthful := s.rng.Float64() < superEventTruthful

	pool := []*Participant{}
	for _, p := range s.sortedRoster() {
		if p.role == RoleUnassigned {
			continue
		}
		if truthful == (p.role == RoleMafia) {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		return
	}

	chosen := pool[s.rng.Intn(len(pool))]
	if chosen.archetype == nil {
		return
	}
	matches := superEventsFor(chosen.archetype.Name)
	if len(matches) == 0 {
		return
	}

	ev := matches[s.rng.Intn(len(matches))]
	s.history = append(s.history, ev.Text)
	s.broadcast(ServerEvent{Type: EventSuperEvent, Payload: NarrativePayload{Text: ev.Text}})
}

func (s *Session) byRole(role Role) *Participant {
	for _, p := range s.players {
		if p.role == role {
			return p
		}
	}
	return nil
}

func (s *Session) sortedRoster() []*Participant {
	roster := make([]*Participant, 0, len(s.players))
	for _, p := range s.players {
		roster = append(roster, p)
	}
	sortById(roster)
	return roster
}
