// Package session holds the CLI's view of the current authentication state
// and lets interested parties observe it.
//
// The state starts Pending, moves to Authenticated or Unauthenticated once
// the stored token has been checked, and from then on only moves between
// those two. Nothing returns it to Pending.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/api"
)

type State int

const (
	StatePending State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is one observed state. User and Session are set only when
// authenticated.
type Snapshot struct {
	State   State
	User    *api.User
	Session *api.Session
}

// Store is safe for concurrent use. Subscribers never block a publisher: a
// slow subscriber only sees the most recent snapshot.
type Store struct {
	mu   sync.Mutex
	cur  Snapshot
	subs map[int]chan Snapshot
	next int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]chan Snapshot)}
}

func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

func (s *Store) SetAuthenticated(u *api.User, sess *api.Session) {
	s.publish(Snapshot{State: StateAuthenticated, User: u, Session: sess})
}

// UpdateUser replaces the user of an authenticated snapshot, e.g. after a
// profile change. It is a no-op otherwise.
func (s *Store) UpdateUser(u *api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur.State != StateAuthenticated || u == nil {
		return
	}
	next := s.cur
	next.User = u
	s.publishLocked(next)
}

func (s *Store) SetUnauthenticated() {
	s.publish(Snapshot{State: StateUnauthenticated})
}

// Subscribe delivers the current snapshot and every later change until ctx
// is done, after which the channel is closed.
func (s *Store) Subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	ch <- s.cur
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

func (s *Store) publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(snap)
}

func (s *Store) publishLocked(snap Snapshot) {
	if snap.State == StatePending {
		return
	}
	s.cur = snap

	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale value the subscriber has not read yet
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
