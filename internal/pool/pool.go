// Package pool holds the rotating collection of authenticated upstream
// sessions. The head of the pool is the active session used for all relayed
// traffic until an explicit rotation.
package pool

import (
	"sync"

	"github.com/PrideVRInc/VRCAuthProxy/internal/metrics"
	"github.com/PrideVRInc/VRCAuthProxy/internal/vrchat"
)

// Pool is an ordered collection of sessions, safe for concurrent use.
// Insertion order is login completion order, which is independent of the
// configured account order because startup logins run concurrently.
type Pool struct {
	mu       sync.Mutex
	sessions []*vrchat.Session
}

func New() *Pool {
	return &Pool{}
}

// Add appends a session. Called once per successful login, possibly from
// several login goroutines at once.
func (p *Pool) Add(session *vrchat.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = append(p.sessions, session)
	metrics.PoolSize.Set(float64(len(p.sessions)))
}

// Active returns the head session without mutating order, or nil when the
// pool is empty.
func (p *Pool) Active() *vrchat.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sessions) == 0 {
		return nil
	}
	return p.sessions[0]
}

// Rotate moves the head session to the tail. No-op on empty or single-entry
// pools.
func (p *Pool) Rotate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sessions) < 2 {
		return
	}
	head := p.sessions[0]
	copy(p.sessions, p.sessions[1:])
	p.sessions[len(p.sessions)-1] = head
}

// Len returns the number of pooled sessions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}
