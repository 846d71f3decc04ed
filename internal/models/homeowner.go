package models

// Email is a contact email reported by the skip-trace provider.
type Email struct {
	Address  string `json:"email"`
	Verified bool   `json:"tested"`
}

// Phone is a contact phone number reported by the skip-trace provider.
type Phone struct {
	Number            string `json:"number"`
	Type              string `json:"type"`
	Carrier           string `json:"carrier"`
	ConfidenceScore   int    `json:"score"`
	Reachable         bool   `json:"reachable"`
	DoNotCall         bool   `json:"dnc"`
	Verified          bool   `json:"tested"`
	FirstReportedDate string `json:"firstReportedDate,omitempty"`
	LastReportedDate  string `json:"lastReportedDate,omitempty"`
}

// Homeowner is the normalized view of a provider match.
// Name fields are nil when the provider did not populate them.
type Homeowner struct {
	FirstName         *string `json:"firstName"`
	LastName          *string `json:"lastName"`
	FullName          *string `json:"fullName"`
	Emails            []Email `json:"emails"`
	PhoneNumbers      []Phone `json:"phoneNumbers"`
	IsLitigator       bool    `json:"isLitigator"`
	HasDoNotCallPhone bool    `json:"hasDncPhone"`
}

// HasName returns true if any name field is populated.
func (h *Homeowner) HasName() bool {
	return h.FirstName != nil || h.LastName != nil || h.FullName != nil
}

// HasContactData returns true if a name, phone or email was found.
func (h *Homeowner) HasContactData() bool {
	return h.HasName() || len(h.PhoneNumbers) > 0 || len(h.Emails) > 0
}

// EnsureSlices replaces nil slices with empty ones so JSON renders [] instead of null.
func (h *Homeowner) EnsureSlices() {
	if h.Emails == nil {
		h.Emails = []Email{}
	}
	if h.PhoneNumbers == nil {
		h.PhoneNumbers = []Phone{}
	}
}
