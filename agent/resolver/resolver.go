// Package resolver maps an utterance such as "iski price", "option 2" or
// "dusra wala" to an entity id from a domain's entity memory.
//
// Resolution is an ordered pipeline of rules evaluated against the lower-cased
// utterance; the first rule that yields an id wins:
//
//  1. deictic         - a demonstrative phrase returns the last-shown entity
//  2. alias           - the first alias key (insertion order) found as a substring
//  3. ordinal_pattern - "2nd option", "option 2", "number 2"
//  4. ordinal_word    - spoken ordinals such as "dusra" or "second"
//
// The alias rule matches by substring, so a short alias can fire inside an
// unrelated longer word. That behaviour is kept on purpose.
package resolver

import (
	"strings"

	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
)

type Resolution struct {
	EntityID string
	Rule     string
}

func (r Resolution) Found() bool {
	return r.EntityID != ""
}

type Resolver struct {
	vocab Vocabulary
	rules []Rule
}

// New builds a resolver with the default rule order for the vocabulary.
func New(vocab Vocabulary) *Resolver {
	return NewWithRules(vocab,
		DeicticRule(vocab.Deictic),
		AliasRule(),
		OrdinalPatternRule(),
		OrdinalWordRule(vocab.Ordinals),
	)
}

func NewWithRules(vocab Vocabulary, rules ...Rule) *Resolver {
	return &Resolver{vocab: vocab, rules: rules}
}

func NewLodging() *Resolver { return New(LodgingVocabulary()) }
func NewDeals() *Resolver   { return New(DealsVocabulary()) }

// Rules returns the rule names in evaluation order.
func (r *Resolver) Rules() []string {
	names := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		names = append(names, rule.Name())
	}
	return names
}

// IsReference reports whether the utterance reads like a reference to
// something shown earlier.
func (r *Resolver) IsReference(utterance string) bool {
	return containsAny(strings.ToLower(utterance), r.vocab.Triggers)
}

// Resolve runs the rule pipeline. A nil memory never resolves.
func (r *Resolver) Resolve(utterance string, mem *statex.EntityMemory) Resolution {
	if mem == nil {
		return Resolution{}
	}
	text := strings.ToLower(utterance)
	for _, rule := range r.rules {
		if id, ok := rule.Apply(text, mem); ok {
			return Resolution{EntityID: id, Rule: rule.Name()}
		}
	}
	return Resolution{}
}

// Annotate resolves only utterances classified as references.
func (r *Resolver) Annotate(utterance string, mem *statex.EntityMemory) Resolution {
	if !r.IsReference(utterance) {
		return Resolution{}
	}
	return r.Resolve(utterance, mem)
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
