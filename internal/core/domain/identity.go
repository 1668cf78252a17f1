package domain

// VerifiedIdentity is the result of a successful token verification. It lives
// for a single request and is never persisted.
type VerifiedIdentity struct {
	SubjectID string
	Email     string
	// Role is read from the token when present. Nothing authorizes on it.
	Role   string
	Claims map[string]any
}
