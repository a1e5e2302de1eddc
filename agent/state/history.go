package state

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// DefaultHistoryLimit is the number of turns every history buffer retains.
const DefaultHistoryLimit = 5

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Domain string

const (
	DomainLodging Domain = "lodging"
	DomainDeals   Domain = "deals"
)

// Reference ties a user turn to an entity the resolver picked for it.
type Reference struct {
	Domain   Domain `json:"domain"`
	EntityID string `json:"entity_id"`
}

// Tag renders the reference in the bracketed form the agent prompts expect.
func (r Reference) Tag() string {
	switch r.Domain {
	case DomainLodging:
		return fmt.Sprintf("[hotel_id:%s]", r.EntityID)
	case DomainDeals:
		return fmt.Sprintf("[deal_id:%s]", r.EntityID)
	default:
		return fmt.Sprintf("[%s_id:%s]", r.Domain, r.EntityID)
	}
}

var bracketed = regexp.MustCompile(`\[[^\]]+\]`)

// StripTags removes every bracketed segment, reference tags included, and
// trims the result.
func StripTags(text string) string {
	return strings.TrimSpace(bracketed.ReplaceAllString(text, ""))
}

var referenceTag = regexp.MustCompile(`\[([a-z]+)_id:\s*([^\]\s]+)\s*\]`)

func tagDomain(prefix string) Domain {
	switch prefix {
	case "hotel":
		return DomainLodging
	case "deal":
		return DomainDeals
	default:
		return Domain(prefix)
	}
}

// ParseTags returns the reference tags found in text, in order.
func ParseTags(text string) []Reference {
	var refs []Reference
	for _, m := range referenceTag.FindAllStringSubmatch(text, -1) {
		refs = append(refs, Reference{Domain: tagDomain(m[1]), EntityID: m[2]})
	}
	return refs
}

// KeepTags drops every reference tag that does not belong to domain.
// Other text is left as is.
func KeepTags(text string, domain Domain) string {
	out := referenceTag.ReplaceAllStringFunc(text, func(tag string) string {
		m := referenceTag.FindStringSubmatch(tag)
		if tagDomain(m[1]) == domain {
			return tag
		}
		return ""
	})
	return strings.Join(strings.Fields(out), " ")
}

type Turn struct {
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	References []Reference `json:"references,omitempty"`
}

func UserTurn(content string, refs ...Reference) Turn {
	return Turn{Role: RoleUser, Content: content, References: refs}
}

func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// WireContent is the text handed to a text-only capability: the content
// followed by one tag per reference.
func (t Turn) WireContent() string {
	if len(t.References) == 0 {
		return t.Content
	}
	var b strings.Builder
	b.WriteString(t.Content)
	for _, ref := range t.References {
		b.WriteByte(' ')
		b.WriteString(ref.Tag())
	}
	return b.String()
}

// History is a bounded FIFO of turns. Oldest turns are dropped first.
type History struct {
	mu    sync.RWMutex
	limit int
	turns []Turn
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		limit: limit,
		turns: make([]Turn, 0, limit+1),
	}
}

func (h *History) Append(t Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, t)
	if over := len(h.turns) - h.limit; over > 0 {
		kept := make([]Turn, h.limit, h.limit+1)
		copy(kept, h.turns[over:])
		h.turns = kept
	}
}

// Turns returns a copy of the retained turns, oldest first.
func (h *History) Turns() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

func (h *History) Limit() int {
	return h.limit
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = h.turns[:0]
}
