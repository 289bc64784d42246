// Package projection implements the projection engine (C9): a durable
// consumer per registered Projection, strict in-order apply, checkpointed
// position, and rebuild-via-reset-and-replay.
//
// Grounded on original_source/src/nats/projection.rs's ProjectionManager,
// adapted from async-nats's Consumer.messages() push-style stream to
// nats.go's Fetch-based pull loop (matching the audit consumer idiom).
package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/arc-self/git-domain/pkg/core/natsclient"
	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/subject"
	"github.com/arc-self/git-domain/pkg/transport"
)

// Projection is implemented by every read model the engine drives.
type Projection interface {
	// Name is this projection's unique identifier.
	Name() string
	// Position returns the last-applied sequence, or 0 if fresh.
	Position() uint64
	// SavePosition persists sequence as the last-applied position.
	SavePosition(sequence uint64)
	// Apply folds one event into the projection's state. Must be
	// idempotent with respect to sequence: applying the same sequence
	// twice produces the same state.
	Apply(ctx context.Context, env events.Envelope, sequence uint64) error
	// Reset clears all derived state and position, preparing for rebuild.
	Reset()
	// Handles reports whether this projection cares about eventType.
	Handles(eventType string) bool
}

// Status reports one projection's runtime state.
type Status struct {
	Name      string
	Position  uint64
	IsRunning bool
}

// Engine coordinates the registered projections' durable consumers.
type Engine struct {
	client       *natsclient.Client
	eventsGetter EventsAfterFunc
	group        string
	log          *zap.Logger

	mu          sync.RWMutex
	projections map[string]Projection
	running     map[string]bool
	cancel      map[string]context.CancelFunc
}

// EventsAfterFunc replays events strictly after startSequence, up to limit
// (0 = unbounded) — satisfied by *eventlog.Log.GetEventsAfter, kept as a
// function type here to avoid an import cycle between eventlog and
// projection.
type EventsAfterFunc func(ctx context.Context, startSequence uint64, limit int) ([]events.Envelope, error)

// New builds an Engine. group names the consumer-group prefix; each
// projection's durable consumer is named "<group>_<projection_name>".
func New(client *natsclient.Client, eventsAfter EventsAfterFunc, group string) *Engine {
	return &Engine{
		client:       client,
		eventsGetter: eventsAfter,
		group:        group,
		log:          client.Log,
		projections:  make(map[string]Projection),
		running:      make(map[string]bool),
		cancel:       make(map[string]context.CancelFunc),
	}
}

// Register adds a projection to the engine. Call before StartAll/Start.
func (e *Engine) Register(p Projection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.projections[p.Name()] = p
	e.log.Info("registered projection", zap.String("projection", p.Name()))
}

// StartAll starts every registered projection's durable consumer loop.
func (e *Engine) StartAll(ctx context.Context) error {
	e.mu.RLock()
	names := make([]string, 0, len(e.projections))
	for name := range e.projections {
		names = append(names, name)
	}
	e.mu.RUnlock()

	for _, name := range names {
		if err := e.Start(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// Start starts one projection's durable consumer loop, bound to
// "<group>_<name>" per spec.md §4.5.
func (e *Engine) Start(ctx context.Context, name string) error {
	e.mu.Lock()
	p, ok := e.projections[name]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("projection: unknown projection %q", name)
	}

	consumerName := fmt.Sprintf("%s_%s", e.group, name)
	sub, err := e.client.JS.PullSubscribe(
		subject.Wildcard(subject.KindEvent),
		consumerName,
		nats.BindStream(natsclient.StreamGitEvents),
		nats.ManualAck(),
		nats.AckExplicit(),
	)
	if err != nil {
		return fmt.Errorf("projection: durable consumer %s: %w: %v", consumerName, transport.ErrSubscription, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.running[name] = true
	e.cancel[name] = cancel
	e.mu.Unlock()

	go e.run(runCtx, name, sub)

	e.log.Info("started projection", zap.String("projection", name), zap.String("consumer", consumerName))
	return nil
}

func (e *Engine) run(ctx context.Context, name string, sub *nats.Subscription) {
	defer func() {
		e.mu.Lock()
		e.running[name] = false
		e.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := sub.Fetch(20, nats.MaxWait(2*time.Second))
		if err != nil {
			continue
		}
		for _, msg := range msgs {
			e.applyOne(ctx, name, msg)
		}
	}
}

func (e *Engine) applyOne(ctx context.Context, name string, msg *nats.Msg) {
	var env events.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		e.log.Warn("projection: unparseable envelope, acking to skip",
			zap.String("projection", name), zap.Error(err))
		msg.Ack()
		return
	}

	meta, err := msg.Metadata()
	var sequence uint64
	if err == nil {
		sequence = meta.Sequence.Stream
	}

	e.mu.RLock()
	p := e.projections[name]
	e.mu.RUnlock()

	if !p.Handles(env.EventType) {
		msg.Ack()
		return
	}

	if sequence != 0 && sequence <= p.Position() {
		e.log.Debug("projection: skipping already-applied sequence",
			zap.String("projection", name), zap.Uint64("sequence", sequence))
		msg.Ack()
		return
	}

	if err := p.Apply(ctx, env, sequence); err != nil {
		e.log.Error("projection: apply failed, not acking for redelivery",
			zap.String("projection", name), zap.String("event_type", env.EventType), zap.Error(err))
		return
	}

	p.SavePosition(sequence)
	msg.Ack()
}

// Rebuild resets a projection and replays the full event log through it,
// per spec.md §4.5's rebuild contract.
func (e *Engine) Rebuild(ctx context.Context, name string) error {
	e.mu.RLock()
	p, ok := e.projections[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("projection: unknown projection %q", name)
	}

	p.Reset()

	evs, err := e.eventsGetter(ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("projection: rebuild %s: replay events: %w", name, err)
	}

	var lastSeq uint64
	for _, env := range evs {
		if !p.Handles(env.EventType) {
			continue
		}
		if err := p.Apply(ctx, env, env.Sequence); err != nil {
			return fmt.Errorf("projection: rebuild %s: apply sequence %d: %w", name, env.Sequence, err)
		}
		lastSeq = env.Sequence
	}
	if lastSeq > 0 {
		p.SavePosition(lastSeq)
	}

	e.log.Info("rebuilt projection", zap.String("projection", name), zap.Int("events", len(evs)))
	return nil
}

// StatusAll reports the runtime status of every registered projection.
func (e *Engine) StatusAll() map[string]Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]Status, len(e.projections))
	for name, p := range e.projections {
		out[name] = Status{Name: name, Position: p.Position(), IsRunning: e.running[name]}
	}
	return out
}

// Stop cancels a running projection's consume loop.
func (e *Engine) Stop(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cancel, ok := e.cancel[name]; ok {
		cancel()
		delete(e.cancel, name)
	}
}
