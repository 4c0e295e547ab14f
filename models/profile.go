package models

// UserProfileRecord is the per-user onboarding document, keyed by uid.
// Partial updates merge into it; unspecified fields are untouched.
type UserProfileRecord struct {
	PreferredEmail               string   `json:"preferredEmail"`
	AllowPhoneContact            bool     `json:"allowPhoneContact"`
	PhoneNumber                  *string  `json:"phoneNumber"`
	PhoneNumberMismatchConfirmed bool     `json:"phoneNumberMismatchConfirmed"`
	Country                      string   `json:"country"`
	JobBoards                    []string `json:"jobBoards"`
	JobBoardsOther               *string  `json:"jobBoardsOther"`
	JobBoardsConsent             bool     `json:"jobBoardsConsent"`
	GmailConsent                 bool     `json:"gmailConsent"`
	AITrackingConsent            bool     `json:"aiTrackingConsent"`
	StepCompleted                int      `json:"stepCompleted"`
	UpdatedAt                    string   `json:"updatedAt"`
}

// HasJobBoard reports whether the named board is part of the selection.
func (r *UserProfileRecord) HasJobBoard(name string) bool {
	for _, board := range r.JobBoards {
		if board == name {
			return true
		}
	}
	return false
}
