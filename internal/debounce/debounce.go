// Package debounce coalesces bursts of calls per key into one trailing call.
package debounce

import (
	"sync"
	"time"
)

type Group struct {
	delay   time.Duration
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

func New(delay time.Duration) *Group {
	return &Group{delay: delay, timers: make(map[string]*time.Timer)}
}

// Trigger schedules fn to run once delay has passed without another Trigger
// for the same key. Only the fn from the latest Trigger runs.
func (g *Group) Trigger(key string, fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	if t, ok := g.timers[key]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(g.delay, func() {
		g.mu.Lock()
		if g.timers[key] != t {
			g.mu.Unlock()
			return
		}
		delete(g.timers, key)
		g.mu.Unlock()
		fn()
	})
	g.timers[key] = t
}

// Pending reports how many keys are waiting to fire.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.timers)
}

// Stop cancels every pending call. Triggers after Stop are ignored.
func (g *Group) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
	for key, t := range g.timers {
		t.Stop()
		delete(g.timers, key)
	}
}
