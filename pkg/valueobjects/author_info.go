package valueobjects

import "fmt"

// AuthorInfo identifies a commit's author or committer by name and email.
// Equality is by both fields, making it safe to use as a map key when
// aggregating per-author statistics.
type AuthorInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewAuthorInfo constructs an AuthorInfo, trimming nothing — Git author
// identities are taken verbatim from commit metadata.
func NewAuthorInfo(name, email string) AuthorInfo {
	return AuthorInfo{Name: name, Email: email}
}

// String renders the conventional Git "Name <email>" form.
func (a AuthorInfo) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Less orders two AuthorInfo values lexicographically by name then email,
// used to break ties deterministically (e.g. primary_owner selection in
// pkg/analytics) when two authors otherwise tie on a numeric score.
func (a AuthorInfo) Less(other AuthorInfo) bool {
	if a.Name != other.Name {
		return a.Name < other.Name
	}
	return a.Email < other.Email
}
