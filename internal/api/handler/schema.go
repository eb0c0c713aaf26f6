package handler

// errorResponse mirrors the envelope rendered by the central error handler.
type errorResponse struct {
	Detail string `json:"detail"`
}

// --- Request / Response types ---

// tokenRequest is the OAuth2 password-flow form. JSON bodies are accepted too.
type tokenRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userCreateRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

type verifyLogoutRequest struct {
	ChildUsername  string `json:"child_username"  validate:"required"`
	ParentPassword string `json:"parent_password" validate:"required"`
}

type verifyLogoutResponse struct {
	Verified bool `json:"verified"`
}

type logSearchRequest struct {
	ChildUsername string `json:"child_username" validate:"required"`
	SearchQuery   string `json:"search_query"   validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type clearSearchesResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deleted_count"`
}
