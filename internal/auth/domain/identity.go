package domain

// Identity is the live external identity handle issued by the identity
// provider after an interactive sign-in. It is mirrored into, but never the
// source of truth for, the SessionRecord.
type Identity struct {
	Subject      string `json:"subject"`
	Email        string `json:"email,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	PhotoURL     string `json:"photoUrl,omitempty"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// IdentityFromSession rebuilds the identity handle from a persisted session
// record, so a restarted process resumes in the signed-in state.
func IdentityFromSession(record *SessionRecord) *Identity {
	return &Identity{
		Subject:      record.UID,
		Email:        record.Email,
		DisplayName:  record.DisplayName,
		PhotoURL:     record.PhotoURL,
		IDToken:      record.IDToken,
		RefreshToken: record.RefreshToken,
	}
}

// AuthState is the coarse lifecycle state of the client session.
type AuthState int

const (
	// StateUnknown holds until the first identity-change notification.
	StateUnknown AuthState = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
