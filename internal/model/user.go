package model

// User is the cached profile of the signed-in learner.
type User struct {
	ID       string `json:"_id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Verified bool   `json:"isVerified,omitempty"`
}

// AuthPayload is the data returned by the sign-in endpoints.
type AuthPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
