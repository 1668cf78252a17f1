package domain

// UserProfile is the directory record for a registered user. SubjectID is
// provider-issued and doubles as the document id.
type UserProfile struct {
	SubjectID   string `json:"subjectId" bson:"_id"`
	DisplayName string `json:"displayName,omitempty" bson:"displayName,omitempty"`
	Phone       string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email       string `json:"email,omitempty" bson:"email,omitempty"`
}

// NewUserProfile builds a profile from a verified identity. The subject id and
// email always come from the identity, never from client input.
func NewUserProfile(id *VerifiedIdentity, displayName string) *UserProfile {
	return &UserProfile{
		SubjectID:   id.SubjectID,
		Email:       id.Email,
		DisplayName: displayName,
	}
}
