package natsclient

import (
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	// StreamGitEvents is the durable stream that captures every Git domain
	// event published under git.event.>.
	StreamGitEvents = "GIT_EVENTS"
	// StreamGitCommands is the work-queue stream carrying inbound commands
	// under git.cmd.>, consumed by the dispatcher's durable consumer group.
	StreamGitCommands = "GIT_COMMANDS"
	// StreamGitAck is the stream capturing ack-protocol messages under
	// git.ack.>, consumed transiently by AckSubscriber.
	StreamGitAck = "GIT_ACK"

	SubjectGitEvents   = "git.event.>"
	SubjectGitCommands = "git.cmd.>"
	SubjectGitAck      = "git.ack.>"
)

// ProvisionStreams idempotently ensures the Git domain's three JetStream
// streams exist with the correct subject filters and retention. It creates
// each stream on first run and is a no-op if it already exists.
func (c *Client) ProvisionStreams() error {
	streams := []*nats.StreamConfig{
		{
			Name:      StreamGitEvents,
			Subjects:  []string{SubjectGitEvents},
			Storage:   nats.FileStorage,
			Retention: nats.LimitsPolicy,
		},
		{
			Name:      StreamGitCommands,
			Subjects:  []string{SubjectGitCommands},
			Storage:   nats.FileStorage,
			Retention: nats.WorkQueuePolicy,
		},
		{
			Name:      StreamGitAck,
			Subjects:  []string{SubjectGitAck},
			Storage:   nats.FileStorage,
			Retention: nats.LimitsPolicy,
			MaxAge:    0,
		},
	}

	for _, cfg := range streams {
		if err := c.ensureStream(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) ensureStream(cfg *nats.StreamConfig) error {
	_, err := c.JS.StreamInfo(cfg.Name)
	if err == nil {
		c.Log.Info("NATS stream already exists", zap.String("stream", cfg.Name))
		return nil
	}

	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("stream info %s: %w", cfg.Name, err)
	}

	if _, err := c.JS.AddStream(cfg); err != nil {
		return fmt.Errorf("create stream %s: %w", cfg.Name, err)
	}

	c.Log.Info("NATS stream provisioned",
		zap.String("stream", cfg.Name),
		zap.Strings("subjects", cfg.Subjects),
	)
	return nil
}
