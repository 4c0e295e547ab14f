package models

// ClientView is the admin-facing projection of a UserProfileRecord with the
// phone number split back into dial code and digits for display.
type ClientView struct {
	UID               string   `json:"uid"`
	PreferredEmail    string   `json:"preferredEmail"`
	Country           string   `json:"country"`
	AllowPhoneContact bool     `json:"allowPhoneContact"`
	CountryCode       string   `json:"countryCode,omitempty"`
	PhoneDigits       string   `json:"phoneDigits,omitempty"`
	FormattedPhone    string   `json:"formattedPhone,omitempty"`
	MismatchConfirmed bool     `json:"mismatchConfirmed"`
	JobBoards         []string `json:"jobBoards"`
	JobBoardsOther    string   `json:"jobBoardsOther,omitempty"`
	StepCompleted     int      `json:"stepCompleted"`
	UpdatedAt         string   `json:"updatedAt"`
}
