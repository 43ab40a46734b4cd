package game

import (
	"fmt"
	"math/rand"
	"sync/atomic"
)

// guestIds hands out session-scoped synthetic identities for connections
// without an account. Negative so they can never collide with database
// ids.
type guestIds struct {
	next atomic.Int64
}

func (g *guestIds) nextId() int64 {
	return -g.next.Add(1)
}

func generateGuestName() string {
	return fmt.Sprintf("Guest%08d", rand.Intn(100000000))
}
