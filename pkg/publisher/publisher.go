// Package publisher routes an envelope to its subject, injects the
// transport headers spec.md §4.2 requires, and publishes it through the
// JetStream client.
//
// Grounded on original_source/src/nats/publisher.rs: the Rust EventPublisher
// built nats_message::Headers from envelope metadata before calling
// jetstream.publish_with_headers. Go does the equivalent through
// nats.Header, set on an nats.Msg passed to PublishMsg.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/subject"
)

// Errors matching spec.md §4.2's fault set.
var (
	ErrInvalidSubject    = errors.New("publisher: unknown event type, no subject mapping")
	ErrSerialization     = errors.New("publisher: failed to serialize envelope")
	ErrPublishTransport  = errors.New("publisher: transport publish failed")
)

// JetStreamPublisher publishes DomainEvents to their routed subject. It
// never retries silently — a failed Publish call is returned to the caller,
// who decides whether to retry.
type JetStreamPublisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
}

// New builds a JetStreamPublisher over an established JetStream context.
func New(js nats.JetStreamContext, log *zap.Logger) *JetStreamPublisher {
	return &JetStreamPublisher{js: js, log: log}
}

// Publish routes env by its event type, builds headers from its metadata,
// serializes it, and publishes it to the resolved subject. Returns the
// JetStream-assigned sequence number.
func (p *JetStreamPublisher) Publish(ctx context.Context, env events.Envelope) (uint64, error) {
	sub, ok := subject.EventSubject(env.EventType)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidSubject, env.EventType)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	msg := &nats.Msg{
		Subject: sub.String(),
		Data:    body,
		Header:  headersFor(env),
	}

	ack, err := p.js.PublishMsg(msg, nats.Context(ctx))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPublishTransport, err)
	}

	p.log.Debug("published event",
		zap.String("subject", sub.String()),
		zap.String("event_id", env.Metadata.EventID.String()),
		zap.Uint64("sequence", ack.Sequence),
	)
	return ack.Sequence, nil
}

// PublishBatch publishes each envelope in order, stopping at the first
// error. The caller observes which sequences were written via the returned
// slice even on partial failure.
func (p *JetStreamPublisher) PublishBatch(ctx context.Context, envs []events.Envelope) ([]uint64, error) {
	sequences := make([]uint64, 0, len(envs))
	for _, env := range envs {
		seq, err := p.Publish(ctx, env)
		if err != nil {
			return sequences, err
		}
		sequences = append(sequences, seq)
	}
	return sequences, nil
}

func headersFor(env events.Envelope) nats.Header {
	h := nats.Header{}
	h.Set("X-Event-ID", env.Metadata.EventID.String())
	h.Set("X-Event-Type", env.EventType)
	h.Set("X-Correlation-ID", env.Metadata.CorrelationID.String())
	h.Set("X-Causation-ID", env.Metadata.CausationID.String())
	h.Set("X-Timestamp", env.Metadata.OccurredAt.Format("2006-01-02T15:04:05.999999999Z07:00"))
	h.Set("X-Schema-Version", fmt.Sprintf("%d", env.Metadata.SchemaVersion))
	h.Set("X-Domain", subject.Domain)
	if env.Metadata.UserID != nil {
		h.Set("X-User-ID", *env.Metadata.UserID)
	}
	if repoID, ok := aggregateIDFromPayload(env); ok {
		h.Set("X-Aggregate-ID", repoID)
	}
	return h
}

// aggregateIDFromPayload extracts repository_id from the raw payload
// without requiring the concrete event type be registered — every Git
// domain event variant carries the field under this JSON key.
func aggregateIDFromPayload(env events.Envelope) (string, bool) {
	var probe struct {
		RepositoryID string `json:"repository_id"`
	}
	if err := json.Unmarshal(env.Payload, &probe); err != nil || probe.RepositoryID == "" {
		return "", false
	}
	return probe.RepositoryID, true
}
