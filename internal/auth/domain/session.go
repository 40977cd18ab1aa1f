package domain

import "encoding/json"

// Storage keys for the persisted session trio. The three keys are always
// written and cleared together; no code path may leave one present without
// the others.
const (
	StorageKeyIDToken      = "idToken"
	StorageKeyRefreshToken = "refreshToken"
	StorageKeyUserData     = "userData"
)

// SessionRecord is the application's own notion of a logged-in user,
// produced by exchanging an external identity credential with the auth
// backend. It is persisted verbatim as the canonical logged-in marker.
type SessionRecord struct {
	UID          string `json:"uid" validate:"required"`
	Email        string `json:"email,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	PhotoURL     string `json:"photoUrl,omitempty"`
	IDToken      string `json:"idToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
	ExpiresIn    string `json:"expiresIn,omitempty"`
}

// Marshal serializes the record for the userData storage key.
func (r *SessionRecord) Marshal() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UnmarshalSessionRecord parses a stored userData value.
func UnmarshalSessionRecord(raw string) (*SessionRecord, error) {
	record := &SessionRecord{}
	if err := json.Unmarshal([]byte(raw), record); err != nil {
		return nil, err
	}
	return record, nil
}
