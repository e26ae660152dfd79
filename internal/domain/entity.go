package domain

// EntityType tags the kind of entity a version entry or translation overlay
// belongs to.
type EntityType string

const (
	EntityContent EntityType = "content"
	EntityVariant EntityType = "variant"
)

// Valid reports whether the entity type is known.
func (e EntityType) Valid() bool {
	return e == EntityContent || e == EntityVariant
}

// Lifecycle event names published after successful writes.
const (
	EventContentCreated    = "content.created"
	EventContentUpdated    = "content.updated"
	EventContentDeleted    = "content.deleted"
	EventContentRolledBack = "content.rolled_back"
)
