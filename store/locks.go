package store

import "sync"

// nameLocks serializes writers per animation name.
type nameLocks struct {
	mu    sync.Mutex
	locks map[string]*nameLock
}

type nameLock struct {
	mu   sync.Mutex
	refs int
}

func (l *nameLocks) lock(name string) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*nameLock)
	}
	nl, ok := l.locks[name]
	if !ok {
		nl = &nameLock{}
		l.locks[name] = nl
	}
	nl.refs++
	l.mu.Unlock()

	nl.mu.Lock()
}

func (l *nameLocks) unlock(name string) {
	l.mu.Lock()
	nl := l.locks[name]
	nl.refs--
	if nl.refs == 0 {
		delete(l.locks, name)
	}
	l.mu.Unlock()

	nl.mu.Unlock()
}
