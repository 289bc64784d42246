package valueobjects

import (
	"fmt"
	"strings"
)

// shellMetacharacters is the exact set spec.md §3 forbids in branch names
// and remote URLs, to keep a validated value object from ever reaching a
// shell or subprocess argument unsafely.
const shellMetacharacters = "$`|;&<>(){}\n\r"

func containsShellMetacharacter(s string) (rune, bool) {
	for _, r := range s {
		if strings.ContainsRune(shellMetacharacters, r) {
			return r, true
		}
	}
	return 0, false
}

func containsControlCharacter(s string) bool {
	for _, r := range s {
		if r < 0x20 && r != '\t' {
			return true
		}
	}
	return false
}

// validateBranchName enforces the branch-name security rules from spec.md
// §3: no "..", no trailing "." or "/", no control characters, no shell
// metacharacters, must not start with "-", must not end with ".lock".
func validateBranchName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: branch name cannot be empty", ErrValidation)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: branch name %q contains '..'", ErrValidation, name)
	}
	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, "/") {
		return fmt.Errorf("%w: branch name %q ends with '.' or '/'", ErrValidation, name)
	}
	if strings.HasSuffix(name, ".lock") {
		return fmt.Errorf("%w: branch name %q ends with '.lock'", ErrValidation, name)
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: branch name %q starts with '-'", ErrValidation, name)
	}
	if containsControlCharacter(name) {
		return fmt.Errorf("%w: branch name %q contains a control character", ErrValidation, name)
	}
	if r, ok := containsShellMetacharacter(name); ok {
		return fmt.Errorf("%w: branch name %q contains shell metacharacter %q", ErrValidation, name, string(r))
	}
	return nil
}

// validateRemoteUrl enforces the scheme and metacharacter rules spec.md §3
// places on remote URLs, accepting https/http/git/ssh schemes as well as
// the scp-like user@host:path shorthand.
func validateRemoteUrl(url string) error {
	if url == "" {
		return fmt.Errorf("%w: remote url cannot be empty", ErrValidation)
	}
	if r, ok := containsShellMetacharacter(url); ok {
		return fmt.Errorf("%w: remote url %q contains shell metacharacter %q", ErrValidation, url, string(r))
	}
	if containsControlCharacter(url) {
		return fmt.Errorf("%w: remote url %q contains a control character", ErrValidation, url)
	}

	for _, scheme := range []string{"https://", "http://", "git://", "ssh://"} {
		if strings.HasPrefix(url, scheme) {
			return nil
		}
	}

	// scp-like syntax: user@host:path
	if at := strings.Index(url, "@"); at > 0 {
		rest := url[at+1:]
		if colon := strings.Index(rest, ":"); colon > 0 && colon < len(rest)-1 {
			return nil
		}
	}

	return fmt.Errorf("%w: remote url %q has an unrecognized scheme", ErrValidation, url)
}
