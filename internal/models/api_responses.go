package models

// LookupRequest is the inbound homeowner lookup body.
type LookupRequest struct {
	PropertyID string `json:"propertyId,omitempty"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zip        string `json:"zip"`
}

// Address returns the address portion of the request.
func (r *LookupRequest) Address() Address {
	return Address{Street: r.Street, City: r.City, State: r.State, Zip: r.Zip}
}

// LookupData is the homeowner payload returned to callers.
type LookupData struct {
	Homeowner
	FromCache bool `json:"fromCache"`
}

// LookupResponse is the envelope returned by the lookup endpoint.
// Success reports whether homeowner data was found, not transport success.
type LookupResponse struct {
	Success bool       `json:"success"`
	Data    LookupData `json:"data"`
	Message string     `json:"message,omitempty"`
}

// ErrorResponse is the envelope returned on failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
