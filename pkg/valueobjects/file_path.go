package valueobjects

import (
	"fmt"
	"strings"
)

// FilePath is a validated, forward-slash-normalized repository-relative
// path. Rejects null bytes, parent-directory traversal ("..") and
// home-escape ("~") segments, matching spec.md §3.
type FilePath struct {
	value string
}

// NewFilePath validates and normalizes a repository-relative file path.
func NewFilePath(path string) (FilePath, error) {
	if path == "" {
		return FilePath{}, fmt.Errorf("%w: file path cannot be empty", ErrValidation)
	}
	if strings.ContainsRune(path, 0) {
		return FilePath{}, fmt.Errorf("%w: file path %q contains a null byte", ErrValidation, path)
	}

	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return FilePath{}, fmt.Errorf("%w: file path %q escapes its root via '..'", ErrValidation, path)
		}
		if segment == "~" {
			return FilePath{}, fmt.Errorf("%w: file path %q contains a home-escape segment", ErrValidation, path)
		}
	}
	if strings.HasPrefix(normalized, "/") {
		return FilePath{}, fmt.Errorf("%w: file path %q must be relative", ErrValidation, path)
	}

	return FilePath{value: normalized}, nil
}

// String returns the normalized path.
func (f FilePath) String() string { return f.value }

// IsZero reports whether this is an unset FilePath.
func (f FilePath) IsZero() bool { return f.value == "" }

func (f FilePath) MarshalText() ([]byte, error) { return []byte(f.value), nil }

func (f *FilePath) UnmarshalText(text []byte) error {
	parsed, err := NewFilePath(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
