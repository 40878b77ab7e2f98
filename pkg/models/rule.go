package models

import (
	"strings"
	"time"
)

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RuleType discriminates rewrite rule rows
type RuleType string

const (
	RuleTypeSynonym   RuleType = "synonym"
	RuleTypeBlacklist RuleType = "blacklist"
)

// RuleStatus is the lifecycle state of a rule row
type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "active"
	RuleStatusInactive RuleStatus = "inactive"
)

// RuleRow is one persisted rewrite rule
type RuleRow struct {
	ID            string     `json:"id" db:"id"`
	TenantID      string     `json:"tenant_id" db:"tenant_id"`
	Type          RuleType   `json:"type" db:"type"`
	OriginalWord  string     `json:"original_word" db:"original_word"`
	SynonymWord   string     `json:"synonym_word" db:"synonym_word"`
	BlacklistWord string     `json:"blacklist_word" db:"blacklist_word"`
	Status        RuleStatus `json:"status" db:"status"`
	Version       int64      `json:"version" db:"version"`
	CreatedBy     string     `json:"created_by" db:"created_by"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// RuleSet is a tenant's full rewrite configuration. Synonym keys and blacklist
// phrases are compared case-insensitively but keep their stored casing for
// audit display. Version increments on every replace and backs the
// compare-and-swap update cycle.
type RuleSet struct {
	Synonyms  map[string]string `json:"synonyms"`
	Blacklist []string          `json:"blacklist"`
	Version   int64             `json:"version"`
}

// NewRuleSet returns an empty rule set at version zero.
func NewRuleSet() RuleSet {
	return RuleSet{
		Synonyms:  map[string]string{},
		Blacklist: []string{},
	}
}

// Merge folds an override into the receiver. Override synonyms win on key
// conflict, blacklists are unioned. The receiver is not modified.
func (rs RuleSet) Merge(override *RuleSet) RuleSet {
	merged := RuleSet{
		Synonyms:  make(map[string]string, len(rs.Synonyms)),
		Blacklist: append([]string{}, rs.Blacklist...),
		Version:   rs.Version,
	}
	for k, v := range rs.Synonyms {
		merged.Synonyms[k] = v
	}
	if override == nil {
		return merged
	}

	for k, v := range override.Synonyms {
		merged.Synonyms[k] = v
	}

	seen := make(map[string]bool, len(merged.Blacklist))
	for _, phrase := range merged.Blacklist {
		seen[normalizeKey(phrase)] = true
	}
	for _, phrase := range override.Blacklist {
		if !seen[normalizeKey(phrase)] {
			merged.Blacklist = append(merged.Blacklist, phrase)
			seen[normalizeKey(phrase)] = true
		}
	}
	return merged
}

// RuleEdit is a single rewrite rule addition. Exactly one of the two
// implementations applies.
type RuleEdit interface {
	isRuleEdit()
}

// SynonymEdit adds or replaces one synonym pair.
type SynonymEdit struct {
	Original    string `json:"original" validate:"required"`
	Replacement string `json:"replacement" validate:"required"`
}

// BlacklistEdit adds one blacklist phrase.
type BlacklistEdit struct {
	Phrase string `json:"phrase" validate:"required"`
}

func (SynonymEdit) isRuleEdit()   {}
func (BlacklistEdit) isRuleEdit() {}

// Apply folds the edit into a copy of the rule set.
func ApplyRuleEdit(rs RuleSet, edit RuleEdit) RuleSet {
	switch e := edit.(type) {
	case SynonymEdit:
		override := NewRuleSet()
		override.Synonyms[e.Original] = e.Replacement
		return rs.Merge(&override)
	case BlacklistEdit:
		override := NewRuleSet()
		override.Blacklist = append(override.Blacklist, e.Phrase)
		return rs.Merge(&override)
	default:
		return rs.Merge(nil)
	}
}
