package service

import "sync"

// LockTable provides the exclusive scopes the engines rely on: one
// mutex per session guarding its seat map, and one global mutex
// serializing ticket code generation. Every seat-map mutation - sale,
// reschedule, validation side effects and the expiry sweep - runs its
// load/check/flip/persist sequence while holding the session's lock, so
// no interleaving request observes a stale availability view.
// Operations on different sessions never block each other. A single
// LockTable instance is shared by all engines of one process.
type LockTable struct {
	mu      sync.Mutex
	session map[uint64]*sync.Mutex
	codes   sync.Mutex
}

// NewLockTable returns an empty lock table.
func NewLockTable() *LockTable {
	return &LockTable{session: make(map[uint64]*sync.Mutex)}
}

func (l *LockTable) forSession(id uint64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.session[id]
	if !ok {
		m = &sync.Mutex{}
		l.session[id] = m
	}
	return m
}

// AcquireSession locks the per-session scope and returns its release
// function.
func (l *LockTable) AcquireSession(id uint64) func() {
	m := l.forSession(id)
	m.Lock()
	return m.Unlock
}

// AcquireSessions locks the scopes of two sessions in ascending ID
// order so concurrent cross-session moves cannot deadlock. When both
// IDs are equal only one lock is taken.
func (l *LockTable) AcquireSessions(a, b uint64) func() {
	if a == b {
		return l.AcquireSession(a)
	}
	if a > b {
		a, b = b, a
	}
	first := l.forSession(a)
	second := l.forSession(b)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

// AcquireCodeGen locks the global code generation scope. Ticket code
// uniqueness is a global constraint, so the probe-and-reserve sequence
// of one purchase must not interleave with another's.
func (l *LockTable) AcquireCodeGen() func() {
	l.codes.Lock()
	return l.codes.Unlock
}
