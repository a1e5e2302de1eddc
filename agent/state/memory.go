package state

import (
	"strconv"
	"strings"
	"sync"
)

// Entity is the id/name pair cached for a lodging property or a deal.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Alias struct {
	Key    string
	Entity Entity
}

// EntityMemory maps alias keys (name, ordinal, "option N", optionally the
// first word of the name) to the entities of the latest successful search.
// Keys keep their first insertion position; re-setting a key only replaces
// its entity.
type EntityMemory struct {
	mu             sync.RWMutex
	firstWordAlias bool

	order   []string
	entries map[string]Entity

	lastShown string
}

func NewEntityMemory(firstWordAlias bool) *EntityMemory {
	return &EntityMemory{
		firstWordAlias: firstWordAlias,
		entries:        make(map[string]Entity),
	}
}

// NewLodgingMemory also registers each name's first word as an alias.
func NewLodgingMemory() *EntityMemory {
	return NewEntityMemory(true)
}

func NewDealsMemory() *EntityMemory {
	return NewEntityMemory(false)
}

// Rebuild replaces the whole alias table with the given entities and points
// LastShown at the first one. An empty list leaves the memory untouched and
// reports false.
func (m *EntityMemory) Rebuild(entities []Entity) bool {
	if len(entities) == 0 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = m.order[:0]
	m.entries = make(map[string]Entity, len(entities)*4)

	for i, e := range entities {
		pos := strconv.Itoa(i + 1)
		name := normalizeKey(e.Name)

		m.set(name, e)
		m.set(pos, e)
		m.set("option "+pos, e)

		if m.firstWordAlias {
			if fields := strings.Fields(name); len(fields) > 0 {
				if _, taken := m.entries[fields[0]]; !taken {
					m.set(fields[0], e)
				}
			}
		}
	}

	m.lastShown = entities[0].ID
	return true
}

func (m *EntityMemory) set(key string, e Entity) {
	if key == "" {
		return
	}
	if _, exists := m.entries[key]; !exists {
		m.order = append(m.order, key)
	}
	m.entries[key] = e
}

func (m *EntityMemory) Lookup(key string) (Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[normalizeKey(key)]
	return e, ok
}

// Aliases returns the alias table in insertion order.
func (m *EntityMemory) Aliases() []Alias {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Alias, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, Alias{Key: k, Entity: m.entries[k]})
	}
	return out
}

func (m *EntityMemory) LastShown() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastShown, m.lastShown != ""
}

func (m *EntityMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

func (m *EntityMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = m.order[:0]
	m.entries = make(map[string]Entity)
	m.lastShown = ""
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
