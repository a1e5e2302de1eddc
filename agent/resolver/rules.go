package resolver

import (
	"regexp"
	"strings"

	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
)

const (
	RuleDeictic        = "deictic"
	RuleAlias          = "alias"
	RuleOrdinalPattern = "ordinal_pattern"
	RuleOrdinalWord    = "ordinal_word"
)

// Rule inspects a lower-cased utterance and may resolve it to an entity id.
type Rule interface {
	Name() string
	Apply(text string, mem *statex.EntityMemory) (string, bool)
}

type ruleFunc struct {
	name string
	fn   func(text string, mem *statex.EntityMemory) (string, bool)
}

func (r ruleFunc) Name() string { return r.name }

func (r ruleFunc) Apply(text string, mem *statex.EntityMemory) (string, bool) {
	return r.fn(text, mem)
}

func NewRule(name string, fn func(text string, mem *statex.EntityMemory) (string, bool)) Rule {
	return ruleFunc{name: name, fn: fn}
}

// DeicticRule returns the last-shown entity when any phrase is present. With
// no last-shown entity the rule falls through.
func DeicticRule(phrases []string) Rule {
	return NewRule(RuleDeictic, func(text string, mem *statex.EntityMemory) (string, bool) {
		if !containsAny(text, phrases) {
			return "", false
		}
		return mem.LastShown()
	})
}

// Bare ordinals and the word "option" are left to the stricter ordinal rules.
var aliasStopKeys = map[string]struct{}{
	"option": {}, "1": {}, "2": {}, "3": {}, "4": {}, "5": {},
}

func AliasRule() Rule {
	return NewRule(RuleAlias, func(text string, mem *statex.EntityMemory) (string, bool) {
		for _, alias := range mem.Aliases() {
			if _, skip := aliasStopKeys[alias.Key]; skip {
				continue
			}
			if strings.Contains(text, alias.Key) {
				return alias.Entity.ID, true
			}
		}
		return "", false
	})
}

var ordinalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)(?:st|nd|rd|th)?\s*(?:option|number|hotel|wala)`),
	regexp.MustCompile(`option\s*(\d+)`),
	regexp.MustCompile(`number\s*(\d+)`),
}

// OrdinalPatternRule tries the patterns in order and looks up the first
// match's digits as a bare ordinal key. A miss moves on to the next pattern.
func OrdinalPatternRule() Rule {
	return NewRule(RuleOrdinalPattern, func(text string, mem *statex.EntityMemory) (string, bool) {
		for _, re := range ordinalPatterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if e, ok := mem.Lookup(m[1]); ok {
				return e.ID, true
			}
		}
		return "", false
	})
}

func OrdinalWordRule(words []OrdinalWord) Rule {
	return NewRule(RuleOrdinalWord, func(text string, mem *statex.EntityMemory) (string, bool) {
		for _, w := range words {
			if !strings.Contains(text, w.Word) {
				continue
			}
			if e, ok := mem.Lookup(w.Position); ok {
				return e.ID, true
			}
		}
		return "", false
	})
}
