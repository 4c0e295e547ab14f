package models

// Identity is the authenticated principal delivered by the identity provider.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}
