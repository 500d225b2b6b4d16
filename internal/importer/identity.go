package importer

import (
	"errors"
	"fmt"
)

// Kind names an entity namespace in the identity map. Import ids are only
// unique within one kind; a user id and a post id may collide numerically.
type Kind string

const (
	KindUser     Kind = "user"
	KindCategory Kind = "category"
	KindPost     Kind = "post"
)

// ErrDuplicateMapping is returned when Record is called twice for the same
// (kind, import id) pair. A mapping is never silently overwritten: doing so
// would break the at-most-once creation guarantee.
var ErrDuplicateMapping = errors.New("import id already mapped")

// TopicPosition identifies where a post sits within its topic.
type TopicPosition struct {
	TopicID    uint
	PostNumber int
}

// IdentityMap tracks which source records already exist in the target system:
// (kind, import id) -> target id, plus the topic coordinates of every known
// post. It is process-local, single-writer and rebuilt from persisted
// import-id metadata at the start of each run.
type IdentityMap struct {
	ids       map[Kind]map[string]uint
	positions map[uint]TopicPosition
}

func NewIdentityMap() *IdentityMap {
	return &IdentityMap{
		ids: map[Kind]map[string]uint{
			KindUser:     {},
			KindCategory: {},
			KindPost:     {},
		},
		positions: map[uint]TopicPosition{},
	}
}

// importKey canonicalizes an import id to its string form. Persisted metadata
// is always string-typed while in-flight ids may be ints; coercing both sides
// to the same form makes an int lookup find a string-recorded entry.
func importKey(importID any) string {
	switch v := importID.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Lookup reports the target id recorded for the given source id, if any.
func (m *IdentityMap) Lookup(kind Kind, importID any) (uint, bool) {
	id, ok := m.ids[kind][importKey(importID)]
	return id, ok
}

// Record stores a new mapping. Recording the same (kind, import id) pair
// twice is a programming error and returns ErrDuplicateMapping.
func (m *IdentityMap) Record(kind Kind, importID any, targetID uint) error {
	key := importKey(importID)
	if existing, ok := m.ids[kind][key]; ok {
		return fmt.Errorf("%w: %s %q -> %d", ErrDuplicateMapping, kind, key, existing)
	}
	m.ids[kind][key] = targetID
	return nil
}

// RecordPosition stores the topic coordinates of a target post.
func (m *IdentityMap) RecordPosition(postID uint, pos TopicPosition) {
	m.positions[postID] = pos
}

// Position reports the topic coordinates of a target post, if known.
func (m *IdentityMap) Position(postID uint) (TopicPosition, bool) {
	pos, ok := m.positions[postID]
	return pos, ok
}

// TopicLookup resolves a post import id straight to its topic coordinates,
// chaining the post mapping and the position record.
func (m *IdentityMap) TopicLookup(importID any) (TopicPosition, bool) {
	postID, ok := m.Lookup(KindPost, importID)
	if !ok {
		return TopicPosition{}, false
	}
	return m.Position(postID)
}

// Len reports how many mappings exist for a kind.
func (m *IdentityMap) Len(kind Kind) int {
	return len(m.ids[kind])
}

// load seeds a kind's mappings from persisted metadata during rehydration.
// Scan-back rows are unique per import id, so this bypasses the duplicate
// check that guards live Record calls.
func (m *IdentityMap) load(kind Kind, existing map[string]uint) {
	for key, id := range existing {
		m.ids[kind][key] = id
	}
}

// loadPositions seeds topic coordinates during rehydration.
func (m *IdentityMap) loadPositions(positions map[uint]TopicPosition) {
	for id, pos := range positions {
		m.positions[id] = pos
	}
}
