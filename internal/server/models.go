package server

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// AuthSignupRequest represents the signup payload.
type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginRequest represents the login payload.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// MeResponse returns the current authenticated user id.
type MeResponse struct {
	UserID string `json:"user_id"`
}

// ChatRequest represents one question posted to the assistant.
type ChatRequest struct {
	Message           string   `json:"message"`
	ResearchInterests []string `json:"research_interests,omitempty"`
	TargetDegree      string   `json:"target_degree,omitempty"`
}

// SearchResponse wraps full-text search hits.
type SearchResponse struct {
	Query string      `json:"query"`
	Hits  interface{} `json:"hits"`
}
