package valueobjects

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitHash(t *testing.T) {
	h, err := NewCommitHash("ABC123D")
	require.NoError(t, err)
	assert.Equal(t, "abc123d", h.String())
	assert.Equal(t, "abc123d", h.Short())

	_, err = NewCommitHash("short")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewCommitHash("g123456")
	assert.ErrorIs(t, err, ErrValidation)

	long, err := NewCommitHash("1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)
	assert.Equal(t, "1234567", long.Short())
}

func TestBranchName(t *testing.T) {
	cases := map[string]bool{
		"":                 false,
		"main":             true,
		"feature/foo":      true,
		"branch..name":     false,
		"branch/":          false,
		"branch.":          false,
		"x.lock":           false,
		"-weird":           false,
		"has$dollar":       false,
		"has`backtick":     false,
		"has;semi":         false,
		"has|pipe":         false,
		"has&amp":          false,
	}
	for in, wantOK := range cases {
		_, err := NewBranchName(in)
		if wantOK {
			assert.NoErrorf(t, err, "expected %q to be valid", in)
		} else {
			assert.Errorf(t, err, "expected %q to be invalid", in)
			assert.True(t, errors.Is(err, ErrValidation))
		}
	}

	main, err := NewBranchName("main")
	require.NoError(t, err)
	assert.True(t, main.IsDefault())

	feature, err := NewBranchName("feature/x")
	require.NoError(t, err)
	assert.False(t, feature.IsDefault())
}

func TestRemoteUrl(t *testing.T) {
	_, err := NewRemoteUrl("")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewRemoteUrl("not-a-url")
	assert.ErrorIs(t, err, ErrValidation)

	https, err := NewRemoteUrl("https://github.com/test/repo.git")
	require.NoError(t, err)
	assert.True(t, https.IsGitHub())
	name, ok := https.RepositoryName()
	assert.True(t, ok)
	assert.Equal(t, "repo", name)

	ssh, err := NewRemoteUrl("git@github.com:user/repo.git")
	require.NoError(t, err)
	assert.True(t, ssh.IsGitHub())

	_, err = NewRemoteUrl("https://evil.com/$(rm -rf /)")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFilePath(t *testing.T) {
	_, err := NewFilePath("../x")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewFilePath("")
	assert.ErrorIs(t, err, ErrValidation)

	p, err := NewFilePath("src\\main.rs")
	require.NoError(t, err)
	assert.Equal(t, "src/main.rs", p.String())
}

func TestAuthorInfoOrdering(t *testing.T) {
	a := NewAuthorInfo("Alice", "alice@example.com")
	b := NewAuthorInfo("Bob", "bob@example.com")
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.Equal(t, "Alice <alice@example.com>", a.String())
}

func TestRepositoryIdRoundTrip(t *testing.T) {
	id := NewRepositoryId()
	parsed, err := ParseRepositoryId(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseRepositoryId("not-a-uuid")
	assert.ErrorIs(t, err, ErrValidation)
}
