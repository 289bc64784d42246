package commandhandlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arc-self/git-domain/pkg/dispatcher"
)

// These tests exercise only the validation paths that return before
// touching the event log, since *eventlog.Log requires a live JetStream
// connection to construct meaningfully.

func TestCloneRepositoryRejectsMalformedPayload(t *testing.T) {
	h := New(nil)
	_, err := h.CloneRepository(context.Background(), dispatcher.Command{Payload: []byte("not json")})
	assert.ErrorIs(t, err, dispatcher.ErrMalformedPayload)
}

func TestCloneRepositoryRejectsInvalidRemoteURL(t *testing.T) {
	h := New(nil)
	_, err := h.CloneRepository(context.Background(), dispatcher.Command{
		Payload: []byte(`{"remote_url": "not-a-url", "local_path": "/tmp/x"}`),
	})
	assert.Error(t, err)
}

func TestCloneRepositoryRejectsMissingLocalPath(t *testing.T) {
	h := New(nil)
	_, err := h.CloneRepository(context.Background(), dispatcher.Command{
		Payload: []byte(`{"remote_url": "https://github.com/example/demo.git"}`),
	})
	assert.Error(t, err)
}

func TestAnalyzeCommitRejectsInvalidHash(t *testing.T) {
	h := New(nil)
	_, err := h.AnalyzeCommit(context.Background(), dispatcher.Command{
		Payload: []byte(`{"hash": ""}`),
	})
	assert.Error(t, err)
}

func TestCreateBranchRejectsInvalidBranchName(t *testing.T) {
	h := New(nil)
	_, err := h.CreateBranch(context.Background(), dispatcher.Command{
		Payload: []byte(`{"name": "", "head": "abc1234"}`),
	})
	assert.Error(t, err)
}

func TestResolveRepositoryIDGeneratesFreshWhenEmpty(t *testing.T) {
	id, err := resolveRepositoryID("")
	assert.NoError(t, err)
	assert.False(t, id.IsZero())
}

func TestResolveRepositoryIDRejectsMalformed(t *testing.T) {
	_, err := resolveRepositoryID("not-a-uuid")
	assert.Error(t, err)
}
