package domain

// AnonymousAuthor is recorded as the author of suggestions submitted without a session.
// It is reserved and cannot be registered as a username.
const AnonymousAuthor = "Anónimo"

// Suggestion is a free-text message in the suggestion log.
type Suggestion struct {
	Author string
	Text   string
}

// IsAnonymous reports whether the suggestion was submitted without a session.
func (s Suggestion) IsAnonymous() bool {
	return s.Author == AnonymousAuthor
}
