// Package dispatcher implements the command dispatcher (C7): it pulls
// commands from the GIT_COMMANDS work-queue stream, acks their lifecycle
// through pkg/ack, looks up a registered Handler by command type, invokes
// it, and publishes the result.
//
// Grounded on the audit-service consumer's Fetch/Ack/Nak/Term loop
// (apps/audit-service/internal/consumer/audit.go) for the pull-subscribe
// and tracing idiom, and on spec.md §4.4's seven-step protocol for the
// ack sequence.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arc-self/git-domain/pkg/ack"
	"github.com/arc-self/git-domain/pkg/core/natsclient"
	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/subject"
	"github.com/arc-self/git-domain/pkg/transport"
)

// Command is an inbound command message, decoded from its JetStream
// payload. Payload is kept raw so a Handler can decode its own expected
// command shape.
type Command struct {
	CommandID   string
	CommandType string
	Payload     json.RawMessage
	ReplySubj   string
}

// Handler processes one command type and returns the events it produced,
// or an error that becomes a Failed ack.
type Handler func(ctx context.Context, cmd Command) ([]events.DomainEvent, error)

// ErrNoHandler is returned (as a Rejected ack reason) when no handler is
// registered for a command's X-Command-Type.
var ErrNoHandler = errors.New("dispatcher: no handler registered for command type")

// ErrMalformedPayload marks a message that is terminated rather than
// redelivered, per the audit consumer's poison-pill handling: a handler
// error wrapping it gets a Failed ack and msg.Term() instead of msg.Nak().
var ErrMalformedPayload = errors.New("dispatcher: malformed command payload")

// Dispatcher subscribes to git.cmd.> as a work-queue group, so exactly one
// instance in the group receives each command.
type Dispatcher struct {
	nats      *natsclient.Client
	acker     *ack.Publisher
	handlers  map[string]Handler
	groupName string
	handlerID string
	log       *zap.Logger
	tracer    trace.Tracer
}

// New builds a Dispatcher. groupName is the durable consumer / work-queue
// group name shared by every replica; handlerID identifies this replica in
// published acks.
func New(client *natsclient.Client, acker *ack.Publisher, groupName, handlerID string) *Dispatcher {
	return &Dispatcher{
		nats:      client,
		acker:     acker,
		handlers:  make(map[string]Handler),
		groupName: groupName,
		handlerID: handlerID,
		log:       client.Log,
		tracer:    otel.Tracer("git-domain/dispatcher"),
	}
}

// Register binds a Handler to a command_type string.
func (d *Dispatcher) Register(commandType string, handler Handler) {
	d.handlers[commandType] = handler
}

// HandlerFor returns the handler registered for commandType, if any.
func (d *Dispatcher) HandlerFor(commandType string) (Handler, bool) {
	h, ok := d.handlers[commandType]
	return h, ok
}

// Start subscribes to the command work-queue and processes messages in a
// background goroutine until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	sub, err := d.nats.JS.PullSubscribe(
		subject.Wildcard(subject.KindCommand),
		d.groupName,
		nats.BindStream(natsclient.StreamGitCommands),
	)
	if err != nil {
		return fmt.Errorf("dispatcher: pull subscribe: %w: %v", transport.ErrSubscription, err)
	}

	d.log.Info("dispatcher started",
		zap.String("group", d.groupName),
		zap.String("handler_id", d.handlerID),
	)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				msgs, err := sub.Fetch(10, nats.MaxWait(2*time.Second))
				if err != nil {
					continue
				}
				for _, msg := range msgs {
					d.process(ctx, msg)
				}
			}
		}
	}()

	return nil
}

func (d *Dispatcher) process(ctx context.Context, msg *nats.Msg) {
	ctx, span := d.tracer.Start(ctx, "dispatcher.process")
	defer span.End()

	commandID := msg.Header.Get("X-Command-ID")
	if commandID == "" {
		commandID = uuid.New().String()
	}
	commandType := msg.Header.Get("X-Command-Type")

	tracker := ack.NewTracker(d.acker, commandID)
	if err := tracker.Received(); err != nil {
		d.log.Warn("failed to publish Received ack", zap.Error(err))
	}

	var payload json.RawMessage
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		d.log.Warn("malformed command payload", zap.String("command_id", commandID), zap.Error(err))
		_ = tracker.Rejected("malformed payload")
		msg.Term()
		return
	}

	handler, ok := d.handlers[commandType]
	if !ok {
		d.log.Warn("no handler for command type", zap.String("command_type", commandType))
		_ = tracker.Rejected(ErrNoHandler.Error())
		msg.Term()
		return
	}

	if err := tracker.Processing(); err != nil {
		d.log.Warn("failed to publish Processing ack", zap.Error(err))
	}

	cmd := Command{CommandID: commandID, CommandType: commandType, Payload: payload, ReplySubj: msg.Reply}

	produced, err := handler(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		_ = tracker.Failed(err)
		if errors.Is(err, ErrMalformedPayload) {
			msg.Term()
			return
		}
		msg.Nak()
		return
	}

	_ = tracker.Completed()
	if msg.Reply != "" {
		if body, marshalErr := json.Marshal(produced); marshalErr == nil {
			_ = d.nats.Conn.Publish(msg.Reply, body)
		}
	}
	msg.Ack()
}
