package skiptrace

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Request is the provider's skip-trace request body.
type Request struct {
	Requests []PropertyRequest `json:"requests"`
}

// PropertyRequest is a single address to trace.
type PropertyRequest struct {
	PropertyAddress PropertyAddress `json:"propertyAddress"`
}

// PropertyAddress is the provider's address format.
type PropertyAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// response covers both payload shapes the provider has returned for the same query.
type response struct {
	Results *results `json:"results"`
	Owner   *owner   `json:"owner"`
}

type results struct {
	Persons []person `json:"persons"`
	Owner   *owner   `json:"owner"`
	Meta    struct {
		Results struct {
			MatchCount flexInt `json:"matchCount"`
		} `json:"results"`
	} `json:"meta"`
}

// person is the skip-trace shape.
type person struct {
	Name           *name        `json:"name"`
	Emails         []emailEntry `json:"emails"`
	EnrichedEmails []emailEntry `json:"enrichedEmails"`
	PhoneNumbers   []phoneEntry `json:"phoneNumbers"`
	Litigator      flexBool     `json:"litigator"`
	DNC            dncFlags     `json:"dnc"`
}

// owner is the property-lookup shape.
type owner struct {
	Names          []name       `json:"names"`
	Emails         []emailEntry `json:"emails"`
	EnrichedEmails []emailEntry `json:"enrichedEmails"`
	PhoneNumbers   []phoneEntry `json:"phoneNumbers"`
	Litigator      flexBool     `json:"litigator"`
	DNC            dncFlags     `json:"dnc"`
}

type name struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Full  string `json:"full"`
}

type dncFlags struct {
	TCPA flexBool `json:"tcpa"`
}

type phoneEntry struct {
	Number            flexString `json:"number"`
	Type              flexString `json:"type"`
	Carrier           flexString `json:"carrier"`
	Score             flexInt    `json:"score"`
	Reachable         flexBool   `json:"reachable"`
	DNC               flexBool   `json:"dnc"`
	Tested            flexBool   `json:"tested"`
	FirstReportedDate flexString `json:"firstReportedDate"`
	LastReportedDate  flexString `json:"lastReportedDate"`
}

// emailEntry accepts either a bare string or an {email, tested} object.
type emailEntry struct {
	Email  string   `json:"email"`
	Tested flexBool `json:"tested"`
}

func (e *emailEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.Email)
	}
	type plain emailEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = emailEntry(p)
	return nil
}

// flexInt decodes a JSON number or numeric string. Anything else decodes to zero.
// Values outside the int range are clamped.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	x, err := strconv.ParseFloat(s, 64)
	switch {
	case err != nil && !errors.Is(err, strconv.ErrRange), math.IsNaN(x):
		*f = 0
	case x >= math.MaxInt:
		*f = flexInt(math.MaxInt)
	case x <= math.MinInt:
		*f = flexInt(math.MinInt)
	default:
		*f = flexInt(int(x))
	}
	return nil
}

// flexBool decodes a JSON bool, a "true"/"false" style string or a number.
// Anything else decodes to false.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(string(data)), `"`))
	switch s {
	case "true", "t", "yes", "y":
		*b = true
		return nil
	case "false", "f", "no", "n", "", "null":
		*b = false
		return nil
	}
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		*b = x != 0
		return nil
	}
	*b = false
	return nil
}

// flexString decodes a JSON string or number. Anything else decodes to "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			*f = ""
			return nil
		}
		*f = flexString(n.String())
	default:
		*f = ""
	}
	return nil
}
