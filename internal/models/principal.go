package models

// Principal kinds
const (
	PrincipalAPIClient = "api_client"
	PrincipalUser      = "user"
)

// Principal identifies the caller of an authenticated API route.
type Principal struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"` // JWT sub or API client name
	Email   string `json:"email,omitempty"`
}
