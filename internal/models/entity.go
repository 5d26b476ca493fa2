package models

// EntityType identifies one of the primary record kinds addressable through
// the polymorphic (entityType, entityId) reference convention. The set is
// closed: references are validated at the application boundary, never by a
// cross-table foreign key, because entity kinds span multiple physical
// tables.
type EntityType string

// The closed set of entity kinds.
const (
	EntityNote       EntityType = "note"
	EntityTask       EntityType = "task"
	EntityEvent      EntityType = "event"
	EntityJournal    EntityType = "journal"
	EntityFile       EntityType = "file"
	EntityTag        EntityType = "tag"
	EntityAttachment EntityType = "attachment"
	EntityProp       EntityType = "prop"
	EntityEmbedding  EntityType = "embedding"
	EntityLink       EntityType = "link"
)

// EntityTypes returns every known entity kind.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityNote, EntityTask, EntityEvent, EntityJournal, EntityFile,
		EntityTag, EntityAttachment, EntityProp, EntityEmbedding, EntityLink,
	}
}

// Valid reports whether t is one of the known entity kinds.
func (t EntityType) Valid() bool {
	switch t {
	case EntityNote, EntityTask, EntityEvent, EntityJournal, EntityFile,
		EntityTag, EntityAttachment, EntityProp, EntityEmbedding, EntityLink:
		return true
	}
	return false
}

func (t EntityType) String() string { return string(t) }

// Ref is a polymorphic reference to any primary record.
type Ref struct {
	Type EntityType `json:"entity_type"`
	ID   string     `json:"entity_id"`
}
