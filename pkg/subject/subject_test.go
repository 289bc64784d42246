package subject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventSubjectKnown(t *testing.T) {
	s, ok := EventSubject("BranchCreated")
	assert.True(t, ok)
	assert.Equal(t, "git.event.branch.created", s.String())
}

func TestEventSubjectUnknownReturnsAbsence(t *testing.T) {
	_, ok := EventSubject("NotARealEvent")
	assert.False(t, ok)
}

func TestCommandSubject(t *testing.T) {
	s, ok := CommandSubject("CloneRepository")
	assert.True(t, ok)
	assert.Equal(t, "git.cmd.repository.clone", s.String())
}

func TestQuerySubject(t *testing.T) {
	s, ok := QuerySubject("ListBranches")
	assert.True(t, ok)
	assert.Equal(t, "git.query.branch.list", s.String())
}

func TestWildcards(t *testing.T) {
	assert.Equal(t, "git.event.>", Wildcard(KindEvent))
	assert.Equal(t, "git.cmd.repository.>", AggregateWildcard(KindCommand, AggregateRepository))
}

func TestAckSubject(t *testing.T) {
	assert.Equal(t, "git.ack.abc-123", AckSubject("abc-123"))
}
