package eventlog

import (
	"encoding/json"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

func TestDecodeEnvelopeParsesPayload(t *testing.T) {
	repoID := valueobjects.NewRepositoryId()
	event := &events.RepositoryCloned{RepoID: repoID, LocalPath: "/tmp/x"}
	env, err := events.NewEnvelope(event)
	require.NoError(t, err)

	body, err := json.Marshal(env)
	require.NoError(t, err)

	msg := &nats.Msg{Data: body}
	decoded, err := decodeEnvelope(msg)
	require.NoError(t, err)
	assert.Equal(t, "RepositoryCloned", decoded.EventType)
	assert.Equal(t, env.Metadata.EventID, decoded.Metadata.EventID)
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	_, err := decodeEnvelope(&nats.Msg{Data: []byte("not json")})
	assert.Error(t, err)
}
