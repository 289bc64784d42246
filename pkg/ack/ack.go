// Package ack implements the command acknowledgment protocol: publishing
// and observing the Received -> Processing -> {Completed | Failed} state
// machine (plus the alternate terminal Rejected), on subjects
// git.ack.<command_id>.
//
// Grounded on original_source/src/nats/command_ack.rs's CommandAck/
// AckPublisher/AckSubscriber/CommandTracker.
package ack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/arc-self/git-domain/pkg/subject"
)

// Status is a command's acknowledgment state.
type Status string

const (
	StatusReceived   Status = "Received"
	StatusProcessing Status = "Processing"
	StatusCompleted  Status = "Completed"
	StatusFailed     Status = "Failed"
	StatusRejected   Status = "Rejected"
	StatusTimedOut   Status = "TimedOut"
)

// IsTerminal reports whether s ends a command's ack lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusRejected
}

// Ack is one acknowledgment message in a command's lifecycle.
type Ack struct {
	CommandID  string    `json:"command_id"`
	Status     Status    `json:"status"`
	HandlerID  string    `json:"handler_id"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs *int64    `json:"duration_ms,omitempty"`
}

func newAck(commandID string, status Status, handlerID string) Ack {
	return Ack{CommandID: commandID, Status: status, HandlerID: handlerID, Timestamp: time.Now().UTC()}
}

func durationMs(d time.Duration) *int64 {
	v := d.Milliseconds()
	return &v
}

// Publisher publishes acks for one handler instance, identified by
// handlerID so multiple replicas can be told apart in observed acks.
type Publisher struct {
	nc        *nats.Conn
	handlerID string
}

// NewPublisher builds a Publisher over a plain NATS connection — acks are
// fire-and-forget core NATS publishes that wait for no JetStream publish
// acknowledgement. The GIT_ACK stream that natsclient.ProvisionStreams
// creates over git.ack.> still stores them.
func NewPublisher(nc *nats.Conn, handlerID string) *Publisher {
	return &Publisher{nc: nc, handlerID: handlerID}
}

// Publish serializes and publishes ack to its command's ack subject.
func (p *Publisher) Publish(ack Ack) error {
	body, err := json.Marshal(ack)
	if err != nil {
		return fmt.Errorf("ack: serialize: %w", err)
	}
	if err := p.nc.Publish(subject.AckSubject(ack.CommandID), body); err != nil {
		return fmt.Errorf("ack: publish: %w", err)
	}
	return nil
}

// Received publishes a Received ack.
func (p *Publisher) Received(commandID string) error {
	return p.Publish(newAck(commandID, StatusReceived, p.handlerID))
}

// Processing publishes a Processing ack.
func (p *Publisher) Processing(commandID string) error {
	return p.Publish(newAck(commandID, StatusProcessing, p.handlerID))
}

// Completed publishes a Completed ack carrying the handler's wall-clock
// duration.
func (p *Publisher) Completed(commandID string, duration time.Duration) error {
	a := newAck(commandID, StatusCompleted, p.handlerID)
	a.DurationMs = durationMs(duration)
	return p.Publish(a)
}

// Failed publishes a Failed ack carrying the error and duration.
func (p *Publisher) Failed(commandID string, cause error, duration time.Duration) error {
	a := newAck(commandID, StatusFailed, p.handlerID)
	a.Error = cause.Error()
	a.DurationMs = durationMs(duration)
	return p.Publish(a)
}

// Rejected publishes a Rejected ack carrying the rejection reason. Rejected
// is reachable from any non-processing state, per spec.md §4.4.
func (p *Publisher) Rejected(commandID, reason string) error {
	a := newAck(commandID, StatusRejected, p.handlerID)
	a.Message = reason
	return p.Publish(a)
}

// Subscriber observes acks published for commands.
type Subscriber struct {
	nc *nats.Conn
}

// NewSubscriber builds a Subscriber over a plain NATS connection.
func NewSubscriber(nc *nats.Conn) *Subscriber {
	return &Subscriber{nc: nc}
}

// SubscribeToCommand collects acks for commandID until a terminal ack
// arrives or ctx's deadline expires, returning them in arrival order.
func (s *Subscriber) SubscribeToCommand(ctx context.Context, commandID string) ([]Ack, error) {
	sub, err := s.nc.SubscribeSync(subject.AckSubject(commandID))
	if err != nil {
		return nil, fmt.Errorf("ack: subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	var acks []Ack
	for {
		remaining := time.Until(deadlineOf(ctx))
		if remaining <= 0 {
			return acks, nil
		}
		msg, err := sub.NextMsgWithContext(ctx)
		if err != nil {
			return acks, nil
		}
		var a Ack
		if err := json.Unmarshal(msg.Data, &a); err != nil {
			continue
		}
		acks = append(acks, a)
		if a.Status.IsTerminal() {
			return acks, nil
		}
	}
}

func deadlineOf(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(time.Hour)
}

// Tracker pairs a Publisher with one command's start time so the
// dispatcher can emit Processing/Completed/Failed acks without threading
// durations through every handler call.
type Tracker struct {
	pub       *Publisher
	commandID string
	start     time.Time
}

// NewTracker starts tracking commandID, recording now as its start time.
func NewTracker(pub *Publisher, commandID string) *Tracker {
	return &Tracker{pub: pub, commandID: commandID, start: time.Now()}
}

// Received publishes a Received ack.
func (t *Tracker) Received() error { return t.pub.Received(t.commandID) }

// Processing publishes a Processing ack.
func (t *Tracker) Processing() error { return t.pub.Processing(t.commandID) }

// Completed publishes a Completed ack using the elapsed time since NewTracker.
func (t *Tracker) Completed() error { return t.pub.Completed(t.commandID, time.Since(t.start)) }

// Failed publishes a Failed ack using the elapsed time since NewTracker.
func (t *Tracker) Failed(cause error) error {
	return t.pub.Failed(t.commandID, cause, time.Since(t.start))
}

// Rejected publishes a Rejected ack; reachable from any non-processing
// state per spec.md §4.4.
func (t *Tracker) Rejected(reason string) error { return t.pub.Rejected(t.commandID, reason) }
