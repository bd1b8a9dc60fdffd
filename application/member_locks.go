package application

import (
	"sync"
)

type memberKey struct {
	guildID  int64
	memberID int64
}

type memberLock struct {
	mu   sync.Mutex
	refs int
}

// MemberLocks serialises balance-checked operations per (guild, member).
// Entries are dropped once no goroutine holds or waits on them.
type MemberLocks struct {
	mu    sync.Mutex
	locks map[memberKey]*memberLock
}

// NewMemberLocks creates an empty lock table
func NewMemberLocks() *MemberLocks {
	return &MemberLocks{locks: make(map[memberKey]*memberLock)}
}

// Lock blocks until the member's lock is held and returns its release func
func (l *MemberLocks) Lock(guildID, memberID int64) func() {
	key := memberKey{guildID: guildID, memberID: memberID}

	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &memberLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *MemberLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
