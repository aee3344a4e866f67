package core

import (
	"sort"
	"sync"
)

// lockSet hands out one mutex per collection. Operations that touch several
// collections take all of their locks up front, in sorted order, so two
// operations can never wait on each other.
type lockSet struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockSet() *lockSet {
	return &lockSet{locks: make(map[string]*sync.Mutex)}
}

func (l *lockSet) get(name string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[name]
	if !ok {
		m = &sync.Mutex{}
		l.locks[name] = m
	}
	return m
}

// acquire locks every named collection and returns the matching release.
func (l *lockSet) acquire(collections ...string) (release func()) {
	names := append([]string(nil), collections...)
	sort.Strings(names)

	held := make([]*sync.Mutex, 0, len(names))
	for i, name := range names {
		if i > 0 && names[i-1] == name {
			continue
		}
		m := l.get(name)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
