package valueobjects

import "strings"

// RemoteUrl is a validated Git remote URL: https/http/git/ssh schemes, or
// the scp-like "user@host:path" shorthand.
type RemoteUrl struct {
	value string
}

// NewRemoteUrl validates a remote URL.
func NewRemoteUrl(url string) (RemoteUrl, error) {
	if err := validateRemoteUrl(url); err != nil {
		return RemoteUrl{}, err
	}
	return RemoteUrl{value: url}, nil
}

// String returns the URL.
func (r RemoteUrl) String() string { return r.value }

// RepositoryName extracts the trailing path segment, stripping a ".git"
// suffix if present.
func (r RemoteUrl) RepositoryName() (string, bool) {
	if r.value == "" {
		return "", false
	}
	trimmed := strings.TrimSuffix(r.value, "/")
	idx := strings.LastIndexAny(trimmed, "/:")
	name := trimmed
	if idx >= 0 {
		name = trimmed[idx+1:]
	}
	name = strings.TrimSuffix(name, ".git")
	if name == "" {
		return "", false
	}
	return name, true
}

// IsGitHub reports whether the URL targets github.com.
func (r RemoteUrl) IsGitHub() bool {
	return strings.Contains(r.value, "github.com")
}

// IsZero reports whether this is an unset RemoteUrl.
func (r RemoteUrl) IsZero() bool { return r.value == "" }

func (r RemoteUrl) MarshalText() ([]byte, error) { return []byte(r.value), nil }

func (r *RemoteUrl) UnmarshalText(text []byte) error {
	parsed, err := NewRemoteUrl(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
