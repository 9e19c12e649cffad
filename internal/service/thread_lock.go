package service

import "sync"

// threadLocks serialises turns per thread. Entries are reference counted and
// dropped once no turn holds or waits for them.
type threadLocks struct {
	mu      sync.Mutex
	entries map[string]*threadLock
}

type threadLock struct {
	mu   sync.Mutex
	refs int
}

func newThreadLocks() *threadLocks {
	return &threadLocks{entries: make(map[string]*threadLock)}
}

func (l *threadLocks) lock(threadID string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[threadID]
	if !ok {
		e = &threadLock{}
		l.entries[threadID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, threadID)
		}
		l.mu.Unlock()
	}
}

func (l *threadLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
