package slot

import (
	"encoding/json"
	"fmt"

	"fractunes/debug"
)

// RuleStore persists serialized rules by key
type RuleStore interface {
	Get(key string) (json.RawMessage, bool)
	Put(key string, value json.RawMessage) error
}

// StorageKey is the persistence key of a slot's rule in mode
func StorageKey(mode, slot string) string {
	return "fractunes-midi-setting-" + mode + "-" + slot
}

// LoadRule reads the stored rule for (mode, slot). A missing or unreadable
// entry falls back to DefaultRule.
func LoadRule(store RuleStore, mode, slot string) MatchRule {
	if store == nil {
		return DefaultRule(mode, slot)
	}
	key := StorageKey(mode, slot)
	raw, ok := store.Get(key)
	if !ok {
		return DefaultRule(mode, slot)
	}

	var r MatchRule
	if err := json.Unmarshal(raw, &r); err != nil {
		debug.Report("rule."+key, fmt.Errorf("stored rule %s: %w", key, err))
		return DefaultRule(mode, slot)
	}
	if err := r.Validate(); err != nil {
		debug.Report("rule."+key, fmt.Errorf("stored rule %s: %w", key, err))
		return DefaultRule(mode, slot)
	}
	return r
}

// SaveRule writes r for (mode, slot)
func SaveRule(store RuleStore, mode, slot string, r MatchRule) error {
	if store == nil {
		return nil
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return store.Put(StorageKey(mode, slot), raw)
}
