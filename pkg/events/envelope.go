package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/arc-self/git-domain/pkg/valueobjects"
)

// DomainEvent is implemented by every Git domain event variant. Go has no
// tagged-union enum, so the event_type discriminator that original_source's
// GitDomainEvent carries as a Rust match arm becomes an interface method
// here, and each variant is its own struct.
type DomainEvent interface {
	EventType() string
	RepositoryID() valueobjects.RepositoryId
	OccurredAt() time.Time
}

// Envelope wraps a DomainEvent with its correlation metadata and a
// sequence number assigned by the event log on append. The Payload is kept
// as json.RawMessage so the envelope can be marshaled/unmarshaled without
// the caller resolving the concrete event type up front; use Unwrap to
// decode into a concrete variant once EventType is known.
type Envelope struct {
	EventType string          `json:"event_type"`
	Metadata  Metadata        `json:"metadata"`
	Payload   json.RawMessage `json:"payload"`
	Sequence  uint64          `json:"sequence,omitempty"`
}

// NewEnvelope builds an envelope around a root event: a fresh correlation
// chain where event_id = correlation_id = causation_id.
func NewEnvelope(event DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal event payload: %w", err)
	}
	return Envelope{
		EventType: event.EventType(),
		Metadata:  NewMetadata(),
		Payload:   payload,
	}, nil
}

// NewCausedEnvelope builds an envelope for an event caused by a prior one,
// preserving the parent's correlation ID and setting causation to the
// parent's event ID, per spec.md §3 invariant 2.
func NewCausedEnvelope(event DomainEvent, parent Metadata) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal event payload: %w", err)
	}
	return Envelope{
		EventType: event.EventType(),
		Metadata:  MetadataFromCorrelation(parent.CorrelationID, parent.EventID),
		Payload:   payload,
	}, nil
}

// Decode unmarshals the envelope's payload into dst, a pointer to a
// concrete event variant.
func (e Envelope) Decode(dst DomainEvent) error {
	return json.Unmarshal(e.Payload, dst)
}

// decoders maps the event_type discriminator to a constructor for the
// concrete zero-value event, used by Unwrap and by projection dispatch.
var decoders = map[string]func() DomainEvent{}

// RegisterEventType registers a variant's zero-value constructor under its
// event_type string. Each event_*.go file calls this from an init().
func RegisterEventType(eventType string, ctor func() DomainEvent) {
	decoders[eventType] = ctor
}

// Unwrap decodes the envelope's payload into the concrete registered
// DomainEvent variant for its event_type, returning an error if the type is
// unknown — e.g. an event written by a newer schema version.
func (e Envelope) Unwrap() (DomainEvent, error) {
	ctor, ok := decoders[e.EventType]
	if !ok {
		return nil, fmt.Errorf("events: unknown event_type %q", e.EventType)
	}
	event := ctor()
	if err := json.Unmarshal(e.Payload, event); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", e.EventType, err)
	}
	return event, nil
}
