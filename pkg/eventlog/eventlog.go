// Package eventlog is the Git domain's single source of truth: an
// append-only, sequence-numbered, subject-filtered JetStream stream. There
// is no separate "event store" abstraction layered above it — JetStream
// itself is the store.
//
// Grounded on original_source/src/nats/event_store.rs's EventStore, adapted
// from async-nats's Stream/Consumer model to nats.go's JetStreamContext.
package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/arc-self/git-domain/pkg/core/natsclient"
	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/publisher"
	"github.com/arc-self/git-domain/pkg/subject"
	"github.com/arc-self/git-domain/pkg/transport"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

// Info reports the current shape of the log, per spec.md §4.3's info()
// contract.
type Info struct {
	Messages      uint64
	Bytes         uint64
	FirstSeq      uint64
	LastSeq       uint64
	ConsumerCount int
}

// Log is the append-only event log over JetStream's GIT_EVENTS stream.
type Log struct {
	client *natsclient.Client
	pub    *publisher.JetStreamPublisher
	log    *zap.Logger
}

// New builds a Log over an already-provisioned JetStream client. Callers
// must run client.ProvisionStreams() at least once before using the log.
func New(client *natsclient.Client, pub *publisher.JetStreamPublisher) *Log {
	return &Log{client: client, pub: pub, log: client.Log}
}

// Append writes one envelope, publication and storage sharing the same
// write, and returns the strictly increasing sequence JetStream assigned.
func (l *Log) Append(ctx context.Context, env events.Envelope) (uint64, error) {
	return l.pub.Publish(ctx, env)
}

// AppendBatch appends each envelope serially. On partial failure the
// caller observes exactly the sequences successfully written.
func (l *Log) AppendBatch(ctx context.Context, envs []events.Envelope) ([]uint64, error) {
	return l.pub.PublishBatch(ctx, envs)
}

// LoadAggregateEvents replays the entire GIT_EVENTS stream via an ephemeral
// consumer and returns, in log order, every envelope whose X-Aggregate-ID
// header names id.
func (l *Log) LoadAggregateEvents(ctx context.Context, id valueobjects.RepositoryId) ([]events.Envelope, error) {
	sub, err := l.client.JS.PullSubscribe(subject.Wildcard(subject.KindEvent), "",
		nats.DeliverAll(), nats.AckNone(), nats.BindStream(natsclient.StreamGitEvents))
	if err != nil {
		return nil, fmt.Errorf("eventlog: create ephemeral consumer: %w: %v", transport.ErrSubscription, err)
	}
	defer sub.Unsubscribe()

	want := id.String()
	var out []events.Envelope
	for {
		msgs, err := sub.Fetch(128, nats.MaxWait(200*time.Millisecond))
		if err != nil {
			if err == nats.ErrTimeout {
				break
			}
			return nil, fmt.Errorf("eventlog: fetch: %w", err)
		}
		if len(msgs) == 0 {
			break
		}
		for _, m := range msgs {
			if m.Header.Get("X-Aggregate-ID") != want {
				continue
			}
			env, decodeErr := decodeEnvelope(m)
			if decodeErr != nil {
				l.log.Warn("eventlog: skipping undecodable envelope", zap.Error(decodeErr))
				continue
			}
			out = append(out, env)
		}
	}
	return out, nil
}

// LoadByCorrelation scans the stream for every envelope sharing
// correlationID, returned in occurrence-time order.
func (l *Log) LoadByCorrelation(ctx context.Context, correlationID string) ([]events.Envelope, error) {
	sub, err := l.client.JS.PullSubscribe(subject.Wildcard(subject.KindEvent), "",
		nats.DeliverAll(), nats.AckNone(), nats.BindStream(natsclient.StreamGitEvents))
	if err != nil {
		return nil, fmt.Errorf("eventlog: create ephemeral consumer: %w: %v", transport.ErrSubscription, err)
	}
	defer sub.Unsubscribe()

	var out []events.Envelope
	for {
		msgs, err := sub.Fetch(128, nats.MaxWait(200*time.Millisecond))
		if err != nil {
			if err == nats.ErrTimeout {
				break
			}
			return nil, fmt.Errorf("eventlog: fetch: %w", err)
		}
		if len(msgs) == 0 {
			break
		}
		for _, m := range msgs {
			if m.Header.Get("X-Correlation-ID") != correlationID {
				continue
			}
			env, decodeErr := decodeEnvelope(m)
			if decodeErr != nil {
				continue
			}
			out = append(out, env)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Metadata.OccurredAt.Before(out[j].Metadata.OccurredAt)
	})
	return out, nil
}

// GetEventsAfter replays from startSequence+1 up to limit entries (0 means
// unbounded).
func (l *Log) GetEventsAfter(ctx context.Context, startSequence uint64, limit int) ([]events.Envelope, error) {
	sub, err := l.client.JS.PullSubscribe(subject.Wildcard(subject.KindEvent), "",
		nats.DeliverByStartSequence(startSequence+1), nats.AckNone(),
		nats.BindStream(natsclient.StreamGitEvents))
	if err != nil {
		return nil, fmt.Errorf("eventlog: create ephemeral consumer: %w: %v", transport.ErrSubscription, err)
	}
	defer sub.Unsubscribe()

	var out []events.Envelope
	for limit == 0 || len(out) < limit {
		batch := 128
		if limit > 0 {
			if remaining := limit - len(out); remaining < batch {
				batch = remaining
			}
		}
		msgs, err := sub.Fetch(batch, nats.MaxWait(200*time.Millisecond))
		if err != nil {
			if err == nats.ErrTimeout {
				break
			}
			return nil, fmt.Errorf("eventlog: fetch: %w", err)
		}
		if len(msgs) == 0 {
			break
		}
		for _, m := range msgs {
			env, decodeErr := decodeEnvelope(m)
			if decodeErr != nil {
				continue
			}
			out = append(out, env)
		}
	}
	return out, nil
}

// CreateDurableConsumer idempotently creates (or rebinds to) a durable pull
// consumer named name, filtered by filterSubject (defaults to the full
// event wildcard), with explicit-ack semantics.
func (l *Log) CreateDurableConsumer(name, filterSubject string) (*nats.Subscription, error) {
	if filterSubject == "" {
		filterSubject = subject.Wildcard(subject.KindEvent)
	}
	sub, err := l.client.JS.PullSubscribe(filterSubject, name,
		nats.ManualAck(), nats.AckExplicit(), nats.BindStream(natsclient.StreamGitEvents))
	if err != nil {
		return nil, fmt.Errorf("eventlog: create durable consumer %s: %w: %v", name, transport.ErrSubscription, err)
	}
	l.log.Info("durable consumer ready", zap.String("consumer", name), zap.String("filter", filterSubject))
	return sub, nil
}

// Info reports GIT_EVENTS stream stats.
func (l *Log) Info() (Info, error) {
	info, err := l.client.JS.StreamInfo(natsclient.StreamGitEvents)
	if err != nil {
		return Info{}, fmt.Errorf("eventlog: stream info: %w", err)
	}
	return Info{
		Messages:      info.State.Msgs,
		Bytes:         info.State.Bytes,
		FirstSeq:      info.State.FirstSeq,
		LastSeq:       info.State.LastSeq,
		ConsumerCount: info.State.Consumers,
	}, nil
}

func decodeEnvelope(m *nats.Msg) (events.Envelope, error) {
	var env events.Envelope
	if err := json.Unmarshal(m.Data, &env); err != nil {
		return events.Envelope{}, err
	}
	meta, err := m.Metadata()
	if err == nil {
		env.Sequence = meta.Sequence.Stream
	}
	return env, nil
}
