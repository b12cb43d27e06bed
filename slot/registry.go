package slot

import (
	"fmt"
	"sort"
	"sync"

	"fractunes/debug"
	"fractunes/midi"
)

// Entry is what the registry knows about one slot
type Entry struct {
	Rule    MatchRule
	Trigger func()
}

// Registry maps slot names to their rule and trigger. Slots write it
// whenever their rule or sample changes; the MIDI input reads it on every
// event.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register replaces any entry for name
func (r *Registry) Register(name string, rule MatchRule, trigger func()) {
	r.mu.Lock()
	r.entries[name] = Entry{Rule: rule, Trigger: trigger}
	r.mu.Unlock()
	debug.Log("registry", "register %s %s", name, rule)
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.entries, name)
	r.mu.Unlock()
}

// Dispatch fires the trigger of every entry whose rule matches ev and
// returns how many matched. Matching runs over one snapshot of the entries;
// triggers run after the lock is released so they may register.
func (r *Registry) Dispatch(ev midi.NoteOnEvent) int {
	type match struct {
		name    string
		trigger func()
	}

	r.mu.RLock()
	matched := make([]match, 0, len(r.entries))
	for name, e := range r.entries {
		if e.Trigger != nil && e.Rule.Matches(ev) {
			matched = append(matched, match{name: name, trigger: e.Trigger})
		}
	}
	r.mu.RUnlock()

	for _, m := range matched {
		fire(m.name, m.trigger)
	}
	return len(matched)
}

// fire runs one trigger; a panic is reported and does not reach the other slots
func fire(name string, trigger func()) {
	defer func() {
		if p := recover(); p != nil {
			debug.Report("trigger."+name, fmt.Errorf("trigger %s panicked: %v", name, p))
		}
	}()
	trigger()
}

// Lookup returns the entry for name
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Names returns the registered slot names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
