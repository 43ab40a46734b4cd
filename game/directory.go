package game

import "sync"

// Directory is the process-wide registry of live sessions, injected into
// the handlers rather than reached for as ambient state. At most one live
// session exists per room id.
type Directory struct {
	mu    sync.RWMutex
	rooms map[int64]*Session
}

func NewDirectory() *Directory {
	return &Directory{rooms: map[int64]*Session{}}
}

func (d *Directory) Add(s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms[s.id] = s
}

func (d *Directory) Lookup(id int64) (*Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return s, nil
}

// Remove unregisters and tears down a session. Safe to call for unknown
// ids.
func (d *Directory) Remove(id int64) {
	d.mu.Lock()
	s, ok := d.rooms[id]
	delete(d.rooms, id)
	d.mu.Unlock()

	if ok {
		s.Close()
	}
}

// ReleaseIfEmpty drops the session once its roster has drained. Called
// after every leave.
func (d *Directory) ReleaseIfEmpty(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.rooms[id]; ok && s.Empty() {
		delete(d.rooms, id)
	}
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
