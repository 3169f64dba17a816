package transport

type GoogleSignInRequest struct {
	Credential string `json:"credential" validate:"required"`
}

type UserResponse struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

type SessionResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   int64        `json:"expiresAt"`
	User        UserResponse `json:"user"`
}
