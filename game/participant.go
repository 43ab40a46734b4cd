package game

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Conn is a participant's delivery channel for outbound frames.
type Conn interface {
	Write(data []byte) error
	Ping() error
	Read() ([]byte, error)
	Close(errCode string)
}

const defaultPingInterval = 30 * time.Second

// Participant is one connected identity inside a Session. Authenticated
// users carry their database id, guests get a session-scoped negative id.
type Participant struct {
	id        int64
	name      string
	role      Role
	archetype *Archetype
	alive     bool
	ready     bool

	conn      Conn
	limiter   *rate.Limiter
	pingEvery time.Duration

	// mu guards outbox shutdown. Only shutdown closes the channel, and
	// deliver fails cleanly afterwards.
	mu     sync.Mutex
	closed bool
	outbox chan []byte
}

func NewParticipant(id int64, name string, conn Conn) *Participant {
	return &Participant{
		id:        id,
		name:      name,
		alive:     true,
		conn:      conn,
		outbox:    make(chan []byte, 64),
		limiter:   rate.NewLimiter(5, 10),
		pingEvery: defaultPingInterval,
	}
}

func (p *Participant) Guest() bool {
	return p.id < 0
}

var (
	errOutboxFull        = errors.New("participant outbox full")
	errParticipantClosed = errors.New("participant closed")
)

// deliver queues a frame without blocking. A full outbox means the
// connection stopped draining, the caller prunes the participant. The
// read loop may race one last error reply against removal, so deliver
// keeps failing after shutdown instead of touching a closed channel.
func (p *Participant) deliver(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errParticipantClosed
	}
	select {
	case p.outbox <- data:
		return nil
	default:
		return errOutboxFull
	}
}

// shutdown closes the outbox exactly once. The session calls it when the
// participant leaves or is pruned; nothing else closes the channel.
func (p *Participant) shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.outbox)
}

// WritePump drains the outbox onto the socket and keeps idle connections
// alive with periodic pings. Runs in its own goroutine per connection,
// exits when the outbox closes or the socket errors.
func (p *Participant) WritePump() {
	ticker := time.NewTicker(p.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-p.outbox:
			if !ok {
				p.conn.Close("")
				return
			}
			if err := p.conn.Write(data); err != nil {
				p.conn.Close("")
				return
			}
		case <-ticker.C:
			if err := p.conn.Ping(); err != nil {
				p.conn.Close("")
				return
			}
		}
	}
}
