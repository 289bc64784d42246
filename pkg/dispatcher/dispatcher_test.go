package dispatcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arc-self/git-domain/pkg/core/natsclient"
	"github.com/arc-self/git-domain/pkg/events"
)

func testDispatcher() *Dispatcher {
	return &Dispatcher{
		nats:      &natsclient.Client{Log: zap.NewNop()},
		handlers:  make(map[string]Handler),
		groupName: "git-domain-group",
		handlerID: "test-handler",
		log:       zap.NewNop(),
	}
}

func TestRegisterAndLookupHandler(t *testing.T) {
	d := testDispatcher()
	called := false
	d.Register("CloneRepository", func(ctx context.Context, cmd Command) ([]events.DomainEvent, error) {
		called = true
		return nil, nil
	})

	handler, ok := d.HandlerFor("CloneRepository")
	require.True(t, ok)
	_, err := handler(context.Background(), Command{CommandID: "c1"})
	require.NoError(t, err)
	assert.True(t, called)

	_, ok = d.HandlerFor("NotRegistered")
	assert.False(t, ok)
}
