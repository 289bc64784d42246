// Package events defines the Git domain's event variants and the envelope
// that carries correlation/causation metadata around them.
package events

import (
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current envelope schema version. The core carries
// this tag but implements no migration machinery — a shape change requires
// either additive compatibility or an explicit projection rebuild.
const SchemaVersion = 1

// Metadata tracks correlation and causation for one event, independent of
// the event payload itself.
type Metadata struct {
	EventID       uuid.UUID `json:"event_id"`
	CorrelationID uuid.UUID `json:"correlation_id"`
	CausationID   uuid.UUID `json:"causation_id"`
	UserID        *string   `json:"user_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
	SchemaVersion int       `json:"schema_version"`
}

// NewMetadata starts a new correlation chain: event_id = correlation_id =
// causation_id, per spec.md §3 invariant 1.
func NewMetadata() Metadata {
	id := uuid.New()
	return Metadata{
		EventID:       id,
		CorrelationID: id,
		CausationID:   id,
		OccurredAt:    time.Now().UTC(),
		SchemaVersion: SchemaVersion,
	}
}

// MetadataFromCorrelation builds metadata for a follow-up event in an
// existing correlation chain, per spec.md §3 invariant 2.
func MetadataFromCorrelation(correlationID, causationID uuid.UUID) Metadata {
	return Metadata{
		EventID:       uuid.New(),
		CorrelationID: correlationID,
		CausationID:   causationID,
		OccurredAt:    time.Now().UTC(),
		SchemaVersion: SchemaVersion,
	}
}

// MetadataFromCommand builds metadata for the first event produced while
// handling a command: the command's ID starts the correlation chain.
func MetadataFromCommand(commandID uuid.UUID) Metadata {
	return Metadata{
		EventID:       uuid.New(),
		CorrelationID: commandID,
		CausationID:   commandID,
		OccurredAt:    time.Now().UTC(),
		SchemaVersion: SchemaVersion,
	}
}

// WithUser returns a copy of m with UserID set.
func (m Metadata) WithUser(userID string) Metadata {
	m.UserID = &userID
	return m
}

// CorrelationContext tracks correlation/causation across a chain of
// operations — e.g. a saga that reacts to one event and produces another.
// Ported from original_source/src/events/metadata.rs's CorrelationContext.
type CorrelationContext struct {
	correlationID  uuid.UUID
	causationStack []uuid.UUID
	userID         *string
}

// NewCorrelationContext starts a brand-new correlation chain.
func NewCorrelationContext() *CorrelationContext {
	id := uuid.New()
	return &CorrelationContext{
		correlationID:  id,
		causationStack: []uuid.UUID{id},
	}
}

// CorrelationContextFrom resumes an existing correlation chain.
func CorrelationContextFrom(correlationID, causationID uuid.UUID) *CorrelationContext {
	return &CorrelationContext{
		correlationID:  correlationID,
		causationStack: []uuid.UUID{causationID},
	}
}

// CorrelationID returns the chain's correlation ID.
func (c *CorrelationContext) CorrelationID() uuid.UUID { return c.correlationID }

// CausationID returns the current (top of stack) causation ID.
func (c *CorrelationContext) CausationID() uuid.UUID {
	if len(c.causationStack) == 0 {
		return c.correlationID
	}
	return c.causationStack[len(c.causationStack)-1]
}

// PushCausation pushes a new causation ID, e.g. when handling an event that
// will itself cause further events.
func (c *CorrelationContext) PushCausation(eventID uuid.UUID) {
	c.causationStack = append(c.causationStack, eventID)
}

// PopCausation pops the most recently pushed causation ID, restoring the
// previous one. The root causation ID is never popped.
func (c *CorrelationContext) PopCausation() {
	if len(c.causationStack) > 1 {
		c.causationStack = c.causationStack[:len(c.causationStack)-1]
	}
}

// WithUser sets the user ID carried into metadata created from this context.
func (c *CorrelationContext) WithUser(userID string) *CorrelationContext {
	c.userID = &userID
	return c
}

// CreateMetadata builds Metadata for a new event in this correlation chain.
func (c *CorrelationContext) CreateMetadata() Metadata {
	m := MetadataFromCorrelation(c.correlationID, c.CausationID())
	m.UserID = c.userID
	return m
}
